package core

import (
	"encoding/json"
	"net/http"

	"github.com/folio-sh/folio/db"
)

// This file defines the standardized response formats for the
// authentication endpoints. The session token itself travels in the
// cookie, never in the body.
//
// Example authentication response (successful login or registration):
// {
//   "status": 200,
//   "code": "ok_authentication",
//   "message": "Authentication successful",
//   "data": {
//     "record": {
//       "id": "f2c7...",
//       "email": "user@example.com",
//       "name": "John Doe",
//       "role": "user",
//       "provider": "email"
//     }
//   }
// }

const (
	// oks for non precomputed, dynamic auth responses
	CodeOkAuthentication      = "ok_authentication"
	CodeOkCurrentSession      = "ok_current_session"
	CodeOkOAuth2ProvidersList = "ok_oauth2_providers_list"
)

// AuthRecord represents the user record in authentication responses.
// The password hash never leaves the db layer.
type AuthRecord struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Avatar      string          `json:"avatar,omitempty"`
	Role        string          `json:"role"`
	Provider    string          `json:"provider"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	Created     string          `json:"created"`
}

// AuthData wraps the record in authentication responses.
type AuthData struct {
	Record AuthRecord `json:"record"`
}

func NewAuthRecord(user *db.User) AuthRecord {
	return AuthRecord{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Avatar:      user.Avatar,
		Role:        user.Role,
		Provider:    user.Provider,
		Preferences: user.Preferences,
		Created:     db.TimeString(user.Created),
	}
}

// writeAuthResponse writes a standardized authentication response.
func writeAuthResponse(w http.ResponseWriter, status int, code string, user *db.User) {
	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  status,
			Code:    code,
			Message: "Authentication successful",
		},
		Data: AuthData{Record: NewAuthRecord(user)},
	}
	WriteJsonWithData(w, response)
}
