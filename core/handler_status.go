package core

import (
	"net/http"
	"time"

	"github.com/folio-sh/folio/db"
)

const CodeOkStatus = "ok_status"

// StatusHandler reports process liveness. It deliberately touches no
// storage so a wedged database cannot fail the probe.
// Endpoint: GET /api/status
// Authenticated: No
func (a *App) StatusHandler(w http.ResponseWriter, r *http.Request) {
	WriteJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkStatus,
			Message: "OK",
		},
		Data: map[string]string{"time": db.TimeString(time.Now())},
	})
}
