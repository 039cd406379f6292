package handlers

import (
	"context"
	"net/http"
	"time"

	"finhealth-server/src/util"
)

const pingTimeout = 2 * time.Second

// HealthCheck reports the API as up and whether the database answers.
func HealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		database := "Connected"
		if err := db.Ping(ctx); err != nil {
			logger(r).Warn().Err(err).Msg("database ping failed")
			database = "Disconnected"
		}
		util.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "OK",
			"timestamp": now().UTC().Format("2006-01-02T15:04:05.000Z"),
			"database":  database,
		})
	}
}

// Liveness answers load balancer probes.
func Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
