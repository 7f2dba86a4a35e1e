package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/folio-sh/folio/config"
	"github.com/folio-sh/folio/db"
	"github.com/folio-sh/folio/db/mock"
	"github.com/folio-sh/folio/queue"
)

func resetJob(t *testing.T, userID, email string) db.Job {
	t.Helper()
	payload, err := json.Marshal(queue.PayloadPasswordReset{UserID: userID, CooldownBucket: 42})
	if err != nil {
		t.Fatal(err)
	}
	extra, err := json.Marshal(queue.PayloadPasswordResetExtra{Email: email})
	if err != nil {
		t.Fatal(err)
	}
	return db.Job{
		JobType:      queue.JobTypePasswordReset,
		Payload:      payload,
		PayloadExtra: extra,
	}
}

func TestPasswordResetHandlerMalformedPayload(t *testing.T) {
	provider := config.NewProvider(config.NewDefaultConfig())
	h := NewPasswordResetHandler(&mock.Db{}, provider, nil)

	job := db.Job{
		JobType:      queue.JobTypePasswordReset,
		Payload:      []byte(`{not json`),
		PayloadExtra: []byte(`{}`),
	}
	if err := h.Handle(context.Background(), job); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestPasswordResetHandlerDeletedUser(t *testing.T) {
	tokenCreated := false
	mockDb := &mock.Db{
		GetUserByIdFunc: func(id string) (*db.User, error) {
			return nil, nil
		},
		CreateResetTokenFunc: func(token db.ResetToken) error {
			tokenCreated = true
			return nil
		},
	}

	provider := config.NewProvider(config.NewDefaultConfig())
	h := NewPasswordResetHandler(mockDb, provider, nil)

	if err := h.Handle(context.Background(), resetJob(t, "gone", "gone@example.com")); err != nil {
		t.Fatalf("expected nil for a deleted account, got %v", err)
	}
	if tokenCreated {
		t.Error("no token must be created for a deleted account")
	}
}

func TestPasswordResetHandlerLookupFailure(t *testing.T) {
	dbErr := errors.New("database unavailable")
	mockDb := &mock.Db{
		GetUserByIdFunc: func(id string) (*db.User, error) {
			return nil, dbErr
		},
	}

	provider := config.NewProvider(config.NewDefaultConfig())
	h := NewPasswordResetHandler(mockDb, provider, nil)

	err := h.Handle(context.Background(), resetJob(t, "user1", "user1@example.com"))
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}

func TestPasswordResetHandlerTokenCreateFailure(t *testing.T) {
	createErr := errors.New("disk full")
	mockDb := &mock.Db{
		GetUserByIdFunc: func(id string) (*db.User, error) {
			return &db.User{ID: id, Email: "user1@example.com"}, nil
		},
		CreateResetTokenFunc: func(token db.ResetToken) error {
			if token.UserID != "user1" {
				t.Errorf("expected token for user1, got %q", token.UserID)
			}
			if token.Token == "" {
				t.Error("expected a non-empty token")
			}
			return createErr
		},
	}

	provider := config.NewProvider(config.NewDefaultConfig())
	h := NewPasswordResetHandler(mockDb, provider, nil)

	err := h.Handle(context.Background(), resetJob(t, "user1", "user1@example.com"))
	if !errors.Is(err, createErr) {
		t.Fatalf("expected wrapped create error, got %v", err)
	}
}
