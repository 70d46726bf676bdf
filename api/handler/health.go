package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/api/transport"
	"github.com/fastygo/goaltracker/internal/infrastructure/monitor"
	"github.com/fastygo/goaltracker/internal/store"
	"github.com/fastygo/goaltracker/pkg/httpcontext"
)

// StatusSource is satisfied by *monitor.Monitor.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
	store   *store.Store
}

// NewHealthHandler accepts a nil monitor when no remote backend is configured.
func NewHealthHandler(mon StatusSource, s *store.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		store:       s,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
	}
	if h.store != nil {
		tracker := map[string]interface{}{
			"goals":          len(h.store.Goals()),
			"tasks":          len(h.store.Tasks()),
			"timelineEvents": len(h.store.TimelineEvents(h.store.Settings().TimelineCapacity)),
		}
		if last, ok := h.store.LastInteraction(); ok {
			tracker["lastInteraction"] = last
		}
		payload["tracker"] = tracker
	}

	if h.monitor == nil {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}

	status := h.monitor.GetStatus()
	services := map[string]interface{}{
		"buffer": map[string]interface{}{
			"online": status.Buffer,
			"size":   status.BufferSize,
		},
	}
	healthy := true
	if status.Mirror {
		services["postgresql"] = status.PostgreSQL
		healthy = healthy && status.PostgreSQL
	}
	if status.RedisSlot {
		services["redis"] = status.Redis
		healthy = healthy && status.Redis
	}
	payload["services"] = services

	if healthy {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
