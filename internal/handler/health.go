package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/startera/internal/database"
)

// StatusReporter exposes the storage selector state.
type StatusReporter interface {
	Status() database.Status
}

type healthResp struct {
	Status        string     `json:"status"`
	Backend       string     `json:"backend"`
	DegradedSince *time.Time `json:"degraded_since,omitempty"`
}

// Health reports liveness and which storage backend is serving. It is
// always 200: a degraded backend still serves requests.
func Health(storage StatusReporter) echo.HandlerFunc {
	return func(c echo.Context) error {
		st := storage.Status()
		resp := healthResp{Status: "ok", Backend: string(st.Backend)}
		if !st.DegradedSince.IsZero() {
			since := st.DegradedSince.UTC()
			resp.DegradedSince = &since
		}
		return c.JSON(http.StatusOK, resp)
	}
}
