package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/notify"
	"github.com/folio-sh/folio/queue"
)

// SubmitContactHandler stores a contact form submission and enqueues
// the notification email.
// Endpoint: POST /api/contact
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) SubmitContactHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		WriteJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	msg, err := a.DbContact().InsertContact(db.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		if errors.Is(err, db.ErrMissingFields) {
			WriteJsonError(w, errorMissingFields)
			return
		}
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	// The submission is stored either way; a queue hiccup only delays
	// the notification email.
	payload, _ := json.Marshal(queue.PayloadContactEmail{MessageID: msg.ID})
	job := db.Job{
		JobType: queue.JobTypeContactEmail,
		Payload: payload,
	}
	if err := a.DbQueue().InsertJob(job); err != nil && !errors.Is(err, db.ErrConstraintUnique) {
		a.Logger().Error("failed to enqueue contact notification", "message", msg.ID, "error", err)
	}

	if n := a.Notifier(); n != nil {
		_ = n.Send(r.Context(), notify.Notification{
			Timestamp: time.Now(),
			Type:      notify.MetricNotification,
			Level:     slog.LevelInfo,
			Source:    "contact",
			Message:   "new contact message",
			Fields:    map[string]any{"message_id": msg.ID, "subject": msg.Subject},
		})
	}

	WriteJsonOk(w, okContactReceived)
}
