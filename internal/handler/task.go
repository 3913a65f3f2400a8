package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker-api/internal/model"
	"github.com/BuzzLyutic/task-tracker-api/internal/service"
	"github.com/BuzzLyutic/task-tracker-api/pkg/respond"
)

// TaskService - операции ядра, которые нужны обработчику
type TaskService interface {
	Get(ctx context.Context, id int64) (model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Filter(ctx context.Context, f model.TaskFilter) ([]model.Task, error)
	Paged(ctx context.Context, f model.TaskFilter) (service.Page, error)
	Count(ctx context.Context, f *model.TaskFilter) (int, error)
	Create(ctx context.Context, f model.TaskFields) (model.Task, error)
	Update(ctx context.Context, id int64, f model.TaskFields) (model.Task, error)
	Complete(ctx context.Context, id int64) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (model.Stats, error)
}

type TaskHandler struct {
	service TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

// Routes монтируется на /api/tasks
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/filter", h.Filter)
	r.Get("/paged", h.Paged)
	r.Get("/count", h.Count)
	r.Get("/stats", h.Stats)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/complete", h.Complete)
	return r
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "tasks fetched", toResponses(tasks))
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "task fetched", toResponse(task))
}

func (h *TaskHandler) Filter(w http.ResponseWriter, r *http.Request) {
	filter, _ := parseFilter(r.URL.Query())

	tasks, err := h.service.Filter(r.Context(), filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "tasks filtered", toResponses(tasks))
}

func (h *TaskHandler) Paged(w http.ResponseWriter, r *http.Request) {
	filter, problems := parseFilter(r.URL.Query())
	if len(problems) > 0 {
		respond.Error(w, r, http.StatusBadRequest, "invalid pagination", problems...)
		return
	}

	page, err := h.service.Paged(r.Context(), filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "tasks page fetched", pageResponse{
		Tasks:      toResponses(page.Tasks),
		Pagination: page.Pagination,
	})
}

func (h *TaskHandler) Count(w http.ResponseWriter, r *http.Request) {
	var filter *model.TaskFilter
	if len(r.URL.Query()) > 0 {
		f, _ := parseFilter(r.URL.Query())
		filter = &f
	}

	n, err := h.service.Count(r.Context(), filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "tasks counted", countResponse{Count: n})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "stats fetched", stats)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	task, err := h.service.Create(r.Context(), req.fields())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respond.Success(w, r, http.StatusCreated, "task created", toResponse(task))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	task, err := h.service.Update(r.Context(), id, req.fields())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "task updated", toResponse(task))
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Complete(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "task completed", toResponse(task))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Success(w, r, http.StatusOK, "task deleted", nil)
}

func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrInvalidArgument):
		respond.Error(w, r, http.StatusBadRequest, "validation error", validationDetail(err))
	default:
		h.logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

// validationDetail убирает префикс "invalid argument: "
func validationDetail(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrInvalidArgument.Error()+": ")
}
