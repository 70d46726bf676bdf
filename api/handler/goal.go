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

type GoalHandler struct {
	baseHandler
	store *store.Store
}

func NewGoalHandler(s *store.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       s,
	}
}

// goalView is a goal with its derived progress.
type goalView struct {
	domain.Goal
	Progress int `json:"progress"`
}

func (v goalView) MarshalJSON() ([]byte, error) {
	return marshalWith(v.Goal, map[string]interface{}{"progress": v.Progress})
}

func (h *GoalHandler) view(g domain.Goal) goalView {
	return goalView{Goal: g, Progress: h.store.GoalProgress(g.ID)}
}

// @Summary List goals
// @Tags goals
// @Router /api/v1/goals [get]
func (h *GoalHandler) List(ctx *fasthttp.RequestCtx) {
	level := domain.GoalLevel(ctx.QueryArgs().Peek("level"))
	status := domain.GoalStatus(ctx.QueryArgs().Peek("status"))
	includeArchived := queryBool(ctx, "includeArchived")

	out := []goalView{}
	for _, g := range h.store.Goals() {
		if g.IsArchived && !includeArchived {
			continue
		}
		if level != "" && g.Level != level {
			continue
		}
		if status != "" && g.Status != status {
			continue
		}
		out = append(out, h.view(g))
	}
	h.respondList(ctx, out, len(out), 0)
}

// @Summary Create goal
// @Tags goals
// @Router /api/v1/goals [post]
func (h *GoalHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.CreateGoalRequest
	if !h.decode(ctx, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, h.view(h.store.AddGoal(in)))
}

// @Summary Get goal
// @Tags goals
// @Router /api/v1/goals/{id} [get]
func (h *GoalHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	g, found := h.store.GetGoal(id)
	if !found {
		h.respondError(ctx, domain.ErrGoalNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.view(g))
}

// @Summary Update goal
// @Tags goals
// @Router /api/v1/goals/{id} [patch]
func (h *GoalHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	var req transport.UpdateGoalRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	g, found := h.store.UpdateGoal(id, patch)
	h.goalResult(ctx, g, found)
}

// @Summary Delete goal and its tasks
// @Tags goals
// @Router /api/v1/goals/{id} [delete]
func (h *GoalHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	if !h.store.DeleteGoal(id) {
		h.respondError(ctx, domain.ErrGoalNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Router /api/v1/goals/{id}/start [post]
func (h *GoalHandler) Start(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	g, found := h.store.StartGoal(id)
	h.goalResult(ctx, g, found)
}

// @Router /api/v1/goals/{id}/complete [post]
func (h *GoalHandler) Complete(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	g, found := h.store.CompleteGoal(id)
	h.goalResult(ctx, g, found)
}

// @Router /api/v1/goals/{id}/archive [post]
func (h *GoalHandler) Archive(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	g, found := h.store.ArchiveGoal(id)
	h.goalResult(ctx, g, found)
}

// @Summary Add a note to the goal timeline
// @Tags goals
// @Router /api/v1/goals/{id}/notes [post]
func (h *GoalHandler) AddNote(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	var req transport.NoteRequest
	if !h.decode(ctx, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}
	event, found := h.store.AddNote(id, req.Text)
	if !found {
		h.respondError(ctx, domain.ErrGoalNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, event)
}

// @Router /api/v1/goals/{id}/progress [get]
func (h *GoalHandler) Progress(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok || !h.exists(ctx, id) {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"goalId":      id,
		"progress":    h.store.GoalProgress(id),
		"byTaskCount": h.store.GoalProgressByTaskCount(id),
	})
}

// @Router /api/v1/goals/{id}/tasks [get]
func (h *GoalHandler) Tasks(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok || !h.exists(ctx, id) {
		return
	}
	tasks := h.store.TasksForGoal(id)
	h.respondList(ctx, tasks, len(tasks), 0)
}

// @Router /api/v1/goals/{id}/timeline [get]
func (h *GoalHandler) Timeline(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok || !h.exists(ctx, id) {
		return
	}
	events := h.store.TimelineEventsForGoal(id)
	h.respondList(ctx, events, len(events), 0)
}

// @Router /api/v1/goals/{id}/stats [get]
func (h *GoalHandler) Stats(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	stats, found := h.store.GoalTimelineStats(id)
	if !found {
		h.respondError(ctx, domain.ErrGoalNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

func (h *GoalHandler) exists(ctx *fasthttp.RequestCtx, id string) bool {
	if _, found := h.store.GetGoal(id); !found {
		h.respondError(ctx, domain.ErrGoalNotFound)
		return false
	}
	return true
}

func (h *GoalHandler) goalResult(ctx *fasthttp.RequestCtx, g domain.Goal, found bool) {
	if !found {
		h.respondError(ctx, domain.ErrGoalNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, h.view(g))
}
