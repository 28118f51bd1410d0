package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/schedulr/internal/errs"
	"github.com/saltyorg/schedulr/internal/web/respond"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health returns a handler that pings the database
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			respond.Error(w, r, errs.NewServiceUnavailableError("Database unavailable"))
			return
		}
		respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
