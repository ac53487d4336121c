package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

const msgTaskDeleted = "Task deleted successfully"

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List tasks
// @Tags tasks
// @Param page query int false "page number, default 1"
// @Param limit query int false "page size, default 10, max 100"
// @Param status query string false "PENDING, IN_PROGRESS or COMPLETED"
// @Param search query string false "title substring"
// @Router /tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	userID, ok := h.currentUser(stdCtx, ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	page, err := parsePositive(args, "page")
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	limit, err := parsePositive(args, "limit")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	query := domain.TaskQuery{
		UserID: userID,
		Page:   page,
		Limit:  limit,
		Status: domain.TaskStatus(args.Peek("status")),
		Search: string(args.Peek("search")),
	}

	result, err := h.uc.ListTasks(stdCtx, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, result)
}

// @Summary Get task
// @Tags tasks
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	userID, ok := h.currentUser(stdCtx, ctx)
	if !ok {
		return
	}

	task, err := h.uc.GetTask(stdCtx, userID, taskID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	userID, ok := h.currentUser(stdCtx, ctx)
	if !ok {
		return
	}

	var req transport.TaskCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	created, err := h.uc.CreateTask(stdCtx, userID, taskUC.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, created)
}

// UpdateTask applies a partial update. A field that is absent or JSON null is
// left as it is, so `"description": null` does not clear the description.
//
// @Summary Update task fields
// @Tags tasks
// @Router /tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	userID, ok := h.currentUser(stdCtx, ctx)
	if !ok {
		return
	}

	var req transport.TaskPatchRequest
	if !h.decode(ctx, &req) {
		return
	}

	updated, err := h.uc.UpdateTask(stdCtx, userID, taskID(ctx), domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, updated)
}

// @Summary Toggle task completion
// @Tags tasks
// @Router /tasks/{id}/toggle [patch]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	userID, ok := h.currentUser(stdCtx, ctx)
	if !ok {
		return
	}

	task, err := h.uc.ToggleStatus(stdCtx, userID, taskID(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.log(stdCtx).Debug("task toggled", zap.String("task_id", task.ID), zap.String("status", string(task.Status)))
	h.respondJSON(ctx, http.StatusOK, task)
}

// @Summary Delete task
// @Tags tasks
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	userID, ok := h.currentUser(stdCtx, ctx)
	if !ok {
		return
	}

	if err := h.uc.DeleteTask(stdCtx, userID, taskID(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Message: msgTaskDeleted})
}

func taskID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}

// parsePositive reads an optional integer query parameter. Absent or
// non-numeric values yield 0 so the use case applies its default; explicit
// values below 1 are rejected.
func parsePositive(args *fasthttp.Args, name string) (int, error) {
	raw := args.Peek(name)
	if len(raw) == 0 {
		return 0, nil
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, nil
	}
	if v < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return v, nil
}
