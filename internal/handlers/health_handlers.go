package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/skout-hq/skout/internal/constants"
	"github.com/skout-hq/skout/internal/utils"
)

// HealthChecker is a dependency that can report whether it is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports the service version and the state of its dependencies.
type HealthHandler struct {
	version     string
	environment string
	checks      map[string]HealthChecker
}

// NewHealthHandler creates a new HealthHandler. checks maps a dependency name
// (database, redis) to its checker; nil entries are skipped.
func NewHealthHandler(version, environment string, checks map[string]HealthChecker) *HealthHandler {
	active := make(map[string]HealthChecker, len(checks))
	for name, c := range checks {
		if c != nil {
			active[name] = c
		}
	}
	return &HealthHandler{version: version, environment: environment, checks: active}
}

// Health answers 200 when every dependency is reachable and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DBHealthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{}
	healthy := true
	for _, name := range names {
		if err := h.checks[name].HealthCheck(ctx); err != nil {
			log.Error().Err(err).Str("dependency", name).Msg("Health check failed")
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", status)
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"version":      h.version,
		"environment":  h.environment,
		"dependencies": status,
	})
}
