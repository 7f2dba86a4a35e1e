package core

import (
	"encoding/json"
	"net/http"

	"github.com/folio-sh/folio/crypto"
)

// LoginWithPasswordHandler handles password-based authentication.
// Endpoint: POST /api/login
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) LoginWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil {
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}

	// An unknown email and a wrong password take the same path: the
	// hash check runs either way so the two cases stay
	// indistinguishable in shape and timing.
	hash := ""
	if user != nil {
		hash = user.Password
	}
	if !crypto.CheckPassword(req.Password, hash) || user == nil {
		WriteJsonError(w, errorInvalidCredentials)
		return
	}

	if err, resp := a.startSession(w, user, req.RememberMe); err != nil {
		a.Logger().Error("failed to start session", "error", err)
		WriteJsonError(w, resp)
		return
	}

	writeAuthResponse(w, http.StatusOK, CodeOkAuthentication, user)
}
