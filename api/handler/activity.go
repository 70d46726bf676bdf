package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/api/transport"
	"github.com/fastygo/goaltracker/internal/metrics"
	"github.com/fastygo/goaltracker/internal/store"
	"github.com/fastygo/goaltracker/internal/timeline"
	"github.com/fastygo/goaltracker/pkg/httpcontext"
)

// ActivityHandler serves productivity aggregates, the global timeline and
// store-wide actions.
type ActivityHandler struct {
	baseHandler
	store *store.Store
}

func NewActivityHandler(s *store.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       s,
	}
}

// @Router /api/v1/productivity/today [get]
func (h *ActivityHandler) Today(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.store.TodayProductivity())
}

// @Router /api/v1/productivity/logs [get]
func (h *ActivityHandler) Logs(ctx *fasthttp.RequestCtx) {
	days := queryInt(ctx, "days", metrics.TrailingDays)
	logs := h.store.ProductivityLogs(days)
	h.respondList(ctx, logs, len(logs), days)
}

// @Router /api/v1/timeline [get]
func (h *ActivityHandler) Timeline(ctx *fasthttp.RequestCtx) {
	limit := queryInt(ctx, "limit", timeline.DefaultLimit)
	events := h.store.TimelineEvents(limit)
	h.respondList(ctx, events, len(events), limit)
}

// @Router /api/v1/timeline [post]
func (h *ActivityHandler) LogEvent(ctx *fasthttp.RequestCtx) {
	var req transport.TimelineEventRequest
	if !h.decode(ctx, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}
	event := h.store.LogTimelineEvent(req.EventType, req.GoalID, req.TaskID, req.Details)
	h.respondSuccess(ctx, http.StatusCreated, event)
}

// @Router /api/v1/interaction [post]
func (h *ActivityHandler) Touch(ctx *fasthttp.RequestCtx) {
	h.store.TrackInteraction()
	last, _ := h.store.LastInteraction()
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"lastInteraction": last})
}

// @Router /api/v1/reset [post]
func (h *ActivityHandler) Reset(ctx *fasthttp.RequestCtx) {
	h.store.Reset()
	h.requestLogger(ctx).Warn("tracker state reset")
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
