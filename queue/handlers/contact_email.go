package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/mail"
	"github.com/folio-sh/folio/queue"
)

// ContactEmailHandler forwards a stored contact form submission to the
// site owner's inbox.
type ContactEmailHandler struct {
	dbContact db.DbContact
	mailer    *mail.Mailer
}

func NewContactEmailHandler(dbContact db.DbContact, mailer *mail.Mailer) *ContactEmailHandler {
	return &ContactEmailHandler{
		dbContact: dbContact,
		mailer:    mailer,
	}
}

func (h *ContactEmailHandler) Handle(ctx context.Context, job db.Job) error {
	var payload queue.PayloadContactEmail
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse contact email payload: %w", err)
	}

	msg, err := h.dbContact.GetContact(payload.MessageID)
	if err != nil {
		return fmt.Errorf("failed to load contact message: %w", err)
	}
	if msg == nil {
		// Deleted before the job ran, nothing to forward.
		return nil
	}

	if err := h.mailer.SendContactNotification(ctx, msg.Name, msg.Email, msg.Message); err != nil {
		return fmt.Errorf("failed to send contact notification: %w", err)
	}

	return nil
}
