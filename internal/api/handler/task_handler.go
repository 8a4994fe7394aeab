package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rjtc/pms-sync/internal/core/domain"
	"github.com/rjtc/pms-sync/internal/core/ports"
	"github.com/rjtc/pms-sync/internal/infrastructure/queue"
)

type TaskHandler struct {
	reader   ports.TaskReader
	writer   ports.TaskWriter
	sessions ports.SessionService
	prefetch *queue.Prefetcher
}

func NewTaskHandler(reader ports.TaskReader, writer ports.TaskWriter, sessions ports.SessionService, prefetch *queue.Prefetcher) *TaskHandler {
	return &TaskHandler{reader: reader, writer: writer, sessions: sessions, prefetch: prefetch}
}

// --- Request / Response types ---

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Dates travel as epoch seconds, matching the stored representation.
	StartDate int64  `json:"start_date"`
	DueDate   int64  `json:"due_date"`
	ProjectID string `json:"project_id"`
}

type assignTaskRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type completionRequest struct {
	Done *bool `json:"done" validate:"required"`
}

type taskIDsResponse struct {
	TaskIDs []string `json:"task_ids"`
}

type taskResponse struct {
	ID          string   `json:"id"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	StartDate   *int64   `json:"start_date"`
	DueDate     *int64   `json:"due_date"`
	ProjectID   *string  `json:"project_id"`
	IsCompleted *bool    `json:"is_completed"`
	Members     []string `json:"members"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		Members:     t.Members,
	}
	if t.StartDate != nil {
		s := t.StartDate.Unix()
		resp.StartDate = &s
	}
	if t.DueDate != nil {
		d := t.DueDate.Unix()
		resp.DueDate = &d
	}
	if done, ok := t.Completion.Bool(); ok {
		resp.IsCompleted = &done
	}
	return resp
}

// List returns the ids of the tasks assigned to the authenticated user. Full
// task records are not loaded here; the ids are handed to the prefetcher so
// they are usually warm by the time the client asks for them one by one.
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	ids, err := h.reader.GetTaskIDs(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	h.prefetch.EnqueueBatch(ids)

	return c.JSON(http.StatusOK, taskIDsResponse{TaskIDs: ids})
}

// Get returns one task, hydrating it from the remote store if it is not
// cached yet. An id with no backing record still resolves: every optional
// field comes back null.
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.reader.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Create writes a new task and assigns it to the creating manager.
func (h *TaskHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	sess, err := h.sessions.Fetch(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	input := ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
	}
	if req.StartDate != 0 {
		input.StartDate = time.Unix(req.StartDate, 0).UTC()
	}
	if req.DueDate != 0 {
		input.DueDate = time.Unix(req.DueDate, 0).UTC()
	}

	task, err := h.writer.CreateTask(c.Request().Context(), sess, input)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Assign links a task and a user in both directions.
func (h *TaskHandler) Assign(c echo.Context) error {
	var req assignTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.writer.AssignTask(c.Request().Context(), c.Param("id"), req.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Completion sets the isCompleted flag of a task.
func (h *TaskHandler) Completion(c echo.Context) error {
	var req completionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.writer.SetCompletionStatus(c.Request().Context(), c.Param("id"), *req.Done); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
