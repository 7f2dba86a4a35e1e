package core

import (
	"encoding/json"
	"net/http"
)

const CodeOkPreferences = "ok_preferences"

// PreferencesData wraps the merged preference bag.
type PreferencesData struct {
	Preferences json.RawMessage `json:"preferences"`
}

// UpdatePreferencesHandler merges the submitted object into the user's
// preference bag. Keys absent from the request are preserved.
// Endpoint: PUT /api/preferences
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpdatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	user := UserFromContext(r.Context())
	if user == nil {
		WriteJsonError(w, errorUnauthenticated)
		return
	}

	var req struct {
		Preferences json.RawMessage `json:"preferences"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}
	if len(req.Preferences) == 0 {
		WriteJsonError(w, errorMissingFields)
		return
	}

	// The merge patch must be a JSON object; scalars or arrays would
	// replace the whole bag.
	var probe map[string]any
	if err := json.Unmarshal(req.Preferences, &probe); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	updated, err := a.DbAuth().UpdatePreferences(user.ID, req.Preferences)
	if err != nil {
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}

	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkPreferences,
			Message: "Preferences updated",
		},
		Data: PreferencesData{Preferences: updated.Preferences},
	}
	WriteJsonWithData(w, response)
}
