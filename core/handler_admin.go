package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/folio-sh/folio/db"
)

const (
	CodeOkUsersList    = "ok_users_list"
	CodeOkRoleUpdated  = "ok_role_updated"
	CodeOkContactsList = "ok_contacts_list"
	CodeOkContactRead  = "ok_contact_read"
	CodeOkContactGone  = "ok_contact_deleted"
)

// ContactRecord is the admin view of a contact form submission.
type ContactRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
	Created string `json:"created"`
}

func newContactRecord(msg *db.ContactMessage) ContactRecord {
	return ContactRecord{
		ID:      msg.ID,
		Name:    msg.Name,
		Email:   msg.Email,
		Phone:   msg.Phone,
		Subject: msg.Subject,
		Message: msg.Message,
		Read:    msg.Read,
		Created: db.TimeString(msg.Created),
	}
}

// ListUsersHandler returns all user records.
// Endpoint: GET /api/admin/users
// Authenticated: Yes (admin)
func (a *App) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := a.DbAuth().ListUsers()
	if err != nil {
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}

	records := make([]AuthRecord, 0, len(users))
	for _, u := range users {
		records = append(records, NewAuthRecord(u))
	}

	WriteJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkUsersList,
			Message: "Users list",
		},
		Data: map[string]any{"users": records},
	})
}

// ToggleUserRoleHandler flips the target user between the user and
// admin roles. Toggling one's own account is rejected regardless of
// caller role, so an instance can never lock out or self-elevate
// through this endpoint.
// Endpoint: PUT /api/admin/users/{id}/role
// Authenticated: Yes (admin)
func (a *App) ToggleUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())
	targetID := a.Router().Param(r, "id")
	if targetID == "" {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if caller != nil && caller.ID == targetID {
		WriteJsonError(w, errorSelfRoleChange)
		return
	}

	target, err := a.DbAuth().GetUserById(targetID)
	if err != nil {
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}
	if target == nil {
		WriteJsonError(w, errorNotFound)
		return
	}

	var newRole string
	switch target.Role {
	case db.RoleUser:
		newRole = db.RoleAdmin
	case db.RoleAdmin:
		newRole = db.RoleUser
	default:
		// A stored role outside the enumeration has no toggle target.
		WriteJsonError(w, errorInvalidRole)
		return
	}

	if err := a.DbAuth().UpdateRole(target.ID, newRole); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			WriteJsonError(w, errorNotFound)
			return
		}
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}

	WriteJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkRoleUpdated,
			Message: "Role updated",
		},
		Data: map[string]string{"id": target.ID, "role": newRole},
	})
}

// ListContactsHandler returns all contact messages, newest first.
// Endpoint: GET /api/admin/contacts
// Authenticated: Yes (admin)
func (a *App) ListContactsHandler(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.DbContact().ListContacts()
	if err != nil {
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	records := make([]ContactRecord, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, newContactRecord(m))
	}

	WriteJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkContactsList,
			Message: "Contact messages list",
		},
		Data: map[string]any{"contacts": records},
	})
}

// MarkContactReadHandler sets the read flag on a contact message. The
// body may carry {"read": false} to flip it back; the default is true.
// Endpoint: PUT /api/admin/contacts/{id}/read
// Authenticated: Yes (admin)
func (a *App) MarkContactReadHandler(w http.ResponseWriter, r *http.Request) {
	id := a.Router().Param(r, "id")
	if id == "" {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	read := true
	if r.Body != nil {
		var req struct {
			Read *bool `json:"read"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Read != nil {
			read = *req.Read
		}
	}

	if err := a.DbContact().SetContactRead(id, read); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			WriteJsonError(w, errorNotFound)
			return
		}
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	WriteJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkContactRead,
			Message: "Contact message updated",
		},
		Data: map[string]any{"id": id, "read": read},
	})
}

// DeleteContactHandler removes a contact message.
// Endpoint: DELETE /api/admin/contacts/{id}
// Authenticated: Yes (admin)
func (a *App) DeleteContactHandler(w http.ResponseWriter, r *http.Request) {
	id := a.Router().Param(r, "id")
	if id == "" {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if err := a.DbContact().DeleteContact(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			WriteJsonError(w, errorNotFound)
			return
		}
		WriteJsonError(w, errorServiceUnavailable)
		return
	}

	WriteJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkContactGone,
			Message: "Contact message deleted",
		},
		Data: map[string]string{"id": id},
	})
}
