package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/queue"
)

// RequestPasswordResetHandler enqueues a password reset email.
// Endpoint: POST /api/password-reset-request
// Authenticated: No
// Allowed Mimetype: application/json
//
// Sending email is expensive and a spam vector, so requests are rate
// limited through cooldown buckets. The response shape is identical
// whether or not the address exists, including when the cooldown
// swallows a duplicate, to prevent account enumeration.
func (a *App) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
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

	// Unknown address or an account without a local password both get
	// the uniform acknowledgement.
	if user == nil || !user.HasPassword() {
		WriteJsonOk(w, okPasswordResetRequested)
		return
	}

	cfg := a.Config()
	cooldownBucket := queue.CoolDownBucket(cfg.RateLimits.PasswordResetCooldown.Duration, time.Now())

	// The unique pending constraint rejects a second insertion in the
	// same bucket.
	payload, _ := json.Marshal(queue.PayloadPasswordReset{
		UserID:         user.ID,
		CooldownBucket: cooldownBucket,
	})
	payloadExtra, _ := json.Marshal(queue.PayloadPasswordResetExtra{
		Email: user.Email,
	})
	job := db.Job{
		JobType:      queue.JobTypePasswordReset,
		Payload:      payload,
		PayloadExtra: payloadExtra,
	}

	if err := a.DbQueue().InsertJob(job); err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			// Already requested in this window.
			WriteJsonOk(w, okPasswordResetRequested)
			return
		}
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	WriteJsonOk(w, okPasswordResetRequested)
}

// ConfirmPasswordResetHandler redeems a reset token and sets the new
// password. The token check and consumption are a single conditional
// write, so redeeming the same token twice fails the second time. All
// existing sessions of the user are revoked.
// Endpoint: POST /api/password-reset-confirm
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) ConfirmPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if req.Token == "" || req.NewPassword == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}

	if len(req.NewPassword) < 8 {
		WriteJsonError(w, errorPasswordComplexity)
		return
	}

	token, err := a.DbAuth().ConsumeResetToken(req.Token)
	if err != nil {
		if errors.Is(err, db.ErrTokenInvalid) {
			WriteJsonError(w, errorInvalidResetToken)
			return
		}
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.NewPassword)
	if err != nil {
		WriteJsonError(w, errorTokenGeneration)
		return
	}

	if err := a.DbAuth().UpdatePassword(token.UserID, hashedPassword); err != nil {
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}

	// A stolen session must not survive a password reset.
	if err := a.DbAuth().RevokeSessionsForUser(token.UserID); err != nil {
		a.Logger().Error("failed to revoke sessions after password reset", "user", token.UserID, "error", err)
	}

	WriteJsonOk(w, okPasswordReset)
}
