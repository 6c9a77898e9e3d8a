package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by *sqlstore.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers GET /health with {"ok": true}, or 503 {"ok": false} when
// the database does not answer within two seconds.
func Health(db Pinger, logger *slog.Logger) http.HandlerFunc {
	h := responder{logger: logger}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("health check failed", slog.String("error", err.Error()))
			h.writeJSON(w, r, http.StatusServiceUnavailable, map[string]bool{"ok": false})
			return
		}
		h.writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
	}
}
