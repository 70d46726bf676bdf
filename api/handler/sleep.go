package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/goaltracker/api/transport"
	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/store"
	"github.com/fastygo/goaltracker/pkg/httpcontext"
)

const defaultSleepLogDays = 7

type SleepHandler struct {
	baseHandler
	store *store.Store
}

func NewSleepHandler(s *store.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *SleepHandler {
	return &SleepHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       s,
	}
}

// @Summary Confirm wake-up
// @Tags sleep
// @Router /api/v1/sleep/wake [post]
func (h *SleepHandler) Wake(ctx *fasthttp.RequestCtx) {
	var req transport.WakeRequest
	if len(ctx.PostBody()) > 0 && !h.decode(ctx, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.store.RecordWakeUp(req.AdjustedMinutesAgo, req.MoodValue()))
}

// @Summary Record going to sleep
// @Tags sleep
// @Router /api/v1/sleep/sleep [post]
func (h *SleepHandler) Sleep(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.store.RecordSleep())
}

// @Router /api/v1/sleep/today [get]
func (h *SleepHandler) Today(ctx *fasthttp.RequestCtx) {
	log, found := h.store.TodaySleepLog()
	if !found {
		h.respondError(ctx, domain.NewError(domain.ErrCodeNotFound, "no sleep log for today"))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, log)
}

// @Router /api/v1/sleep/logs [get]
func (h *SleepHandler) Logs(ctx *fasthttp.RequestCtx) {
	days := queryInt(ctx, "days", defaultSleepLogDays)
	logs := h.store.SleepLogs(days)
	h.respondList(ctx, logs, len(logs), days)
}

// @Router /api/v1/sleep/stats [get]
func (h *SleepHandler) Stats(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.store.SleepStats())
}
