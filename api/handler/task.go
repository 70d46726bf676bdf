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

type TaskHandler struct {
	baseHandler
	store *store.Store
}

func NewTaskHandler(s *store.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       s,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	goalID := string(ctx.QueryArgs().Peek("goalId"))
	includeArchived := queryBool(ctx, "includeArchived")

	source := h.store.Tasks()
	if goalID != "" {
		source = h.store.TasksForGoal(goalID)
	}
	out := []domain.Task{}
	for _, t := range source {
		if t.IsArchived && !includeArchived {
			continue
		}
		out = append(out, t)
	}
	h.respondList(ctx, out, len(out), 0)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.CreateTaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, h.store.AddTask(in))
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	var req transport.UpdateTaskRequest
	if !h.decode(ctx, &req) {
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	t, found := h.store.UpdateTask(id, patch)
	h.taskResult(ctx, t, found)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	if !h.store.DeleteTask(id) {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	t, found := h.store.CompleteTask(id)
	h.taskResult(ctx, t, found)
}

// @Router /api/v1/tasks/{id}/archive [post]
func (h *TaskHandler) Archive(ctx *fasthttp.RequestCtx) {
	id, ok := h.param(ctx, "id")
	if !ok {
		return
	}
	t, found := h.store.ArchiveTask(id)
	h.taskResult(ctx, t, found)
}

func (h *TaskHandler) taskResult(ctx *fasthttp.RequestCtx, t domain.Task, found bool) {
	if !found {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, t)
}
