package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/crypto"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/mail"
	"github.com/folio-sh/folio/queue"
)

// PasswordResetHandler creates the reset token and emails the link.
// Token creation happens here rather than in the HTTP handler so the
// token only exists once the email job actually runs.
type PasswordResetHandler struct {
	dbAuth         db.DbAuth
	configProvider *config.Provider
	mailer         *mail.Mailer
}

func NewPasswordResetHandler(dbAuth db.DbAuth, provider *config.Provider, mailer *mail.Mailer) *PasswordResetHandler {
	return &PasswordResetHandler{
		dbAuth:         dbAuth,
		configProvider: provider,
		mailer:         mailer,
	}
}

func (h *PasswordResetHandler) Handle(ctx context.Context, job db.Job) error {
	cfg := h.configProvider.Get()

	var payload queue.PayloadPasswordReset
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse password reset payload: %w", err)
	}

	var payloadExtra queue.PayloadPasswordResetExtra
	if err := json.Unmarshal(job.PayloadExtra, &payloadExtra); err != nil {
		return fmt.Errorf("failed to parse password reset extra payload: %w", err)
	}

	user, err := h.dbAuth.GetUserById(payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user by ID: %w", err)
	}
	if user == nil {
		// Not an error, the account may have been deleted since the
		// request was enqueued.
		return nil
	}

	token := db.ResetToken{
		Token:   crypto.NewResetToken(),
		UserID:  user.ID,
		Expires: time.Now().UTC().Add(cfg.Session.ResetTokenDuration.Duration),
	}
	if err := h.dbAuth.CreateResetToken(token); err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", cfg.Server.BaseURL, token.Token)

	if err := h.mailer.SendPasswordResetEmail(ctx, payloadExtra.Email, resetURL); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}
