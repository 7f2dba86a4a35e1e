package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
)

// RegisterWithPasswordHandler handles password-based user registration.
// Registration logs the user in directly: the response carries the new
// record and the session cookie.
// Endpoint: POST /api/register
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) RegisterWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if len(req.Password) < 8 {
		WriteJsonError(w, errorPasswordComplexity)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.Password)
	if err != nil {
		WriteJsonError(w, errorTokenGeneration)
		return
	}

	newUser := db.User{
		Email:    req.Email,
		Password: hashedPassword,
		Name:     req.Name,
		Provider: db.ProviderEmail,
		Role:     db.RoleUser,
	}

	createdUser, err := a.DbAuth().CreateUserWithPassword(newUser)
	if err != nil {
		// A duplicate registration leaves the existing account
		// untouched and fails cleanly.
		if errors.Is(err, db.ErrConstraintUnique) {
			WriteJsonError(w, errorEmailConflict)
			return
		}
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}

	if err, resp := a.startSession(w, createdUser, false); err != nil {
		a.Logger().Error("failed to start session", "error", err)
		WriteJsonError(w, resp)
		return
	}

	writeAuthResponse(w, http.StatusCreated, CodeOkAuthentication, createdUser)
}
