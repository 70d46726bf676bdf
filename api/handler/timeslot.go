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

type TimeSlotHandler struct {
	baseHandler
	store *store.Store
}

func NewTimeSlotHandler(s *store.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *TimeSlotHandler {
	return &TimeSlotHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       s,
	}
}

// @Router /api/v1/timeslots [get]
func (h *TimeSlotHandler) List(ctx *fasthttp.RequestCtx) {
	slots := h.store.TimeSlots()
	h.respondList(ctx, slots, len(slots), 0)
}

// @Router /api/v1/timeslots [post]
func (h *TimeSlotHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.CreateTimeSlotRequest
	if !h.decode(ctx, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, h.store.AddTimeSlot(in))
}

// @Summary Seed the default routine when no slots exist
// @Router /api/v1/timeslots/defaults [post]
func (h *TimeSlotHandler) LoadDefaults(ctx *fasthttp.RequestCtx) {
	slots := h.store.LoadDefaultTimeSlots()
	h.respondList(ctx, slots, len(slots), 0)
}

// @Router /api/v1/timeslots/{id} [patch]
func (h *TimeSlotHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	var req transport.UpdateTimeSlotRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	slot, found := h.store.UpdateTimeSlot(id, patch)
	if !found {
		h.respondError(ctx, domain.ErrTimeSlotNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, slot)
}

// @Router /api/v1/timeslots/{id} [delete]
func (h *TimeSlotHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	if !h.store.DeleteTimeSlot(id) {
		h.respondError(ctx, domain.ErrTimeSlotNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Schedule a goal into the slot
// @Router /api/v1/timeslots/{id}/goals/{goalId} [put]
func (h *TimeSlotHandler) AddGoal(ctx *fasthttp.RequestCtx) {
	slotID, goalID, ok := h.link(ctx)
	if !ok {
		return
	}
	if !h.store.AddGoalToTimeSlot(slotID, goalID) {
		h.respondError(ctx, h.missing(slotID))
		return
	}
	h.slotResult(ctx, slotID)
}

// @Summary Unschedule a goal from the slot
// @Router /api/v1/timeslots/{id}/goals/{goalId} [delete]
func (h *TimeSlotHandler) RemoveGoal(ctx *fasthttp.RequestCtx) {
	slotID, goalID, ok := h.link(ctx)
	if !ok {
		return
	}
	if !h.store.RemoveGoalFromTimeSlot(slotID, goalID) {
		h.respondError(ctx, h.missing(slotID))
		return
	}
	h.slotResult(ctx, slotID)
}

func (h *TimeSlotHandler) link(ctx *fasthttp.RequestCtx) (string, string, bool) {
	slotID, ok := h.param(ctx, "id")
	if !ok {
		return "", "", false
	}
	goalID, ok := h.param(ctx, "goalId")
	if !ok {
		return "", "", false
	}
	return slotID, goalID, true
}

// missing picks the not-found error for a failed link change.
func (h *TimeSlotHandler) missing(slotID string) error {
	if _, found := h.store.GetTimeSlot(slotID); !found {
		return domain.ErrTimeSlotNotFound
	}
	return domain.ErrGoalNotFound
}

func (h *TimeSlotHandler) slotResult(ctx *fasthttp.RequestCtx, slotID string) {
	slot, found := h.store.GetTimeSlot(slotID)
	if !found {
		h.respondError(ctx, domain.ErrTimeSlotNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, slot)
}
