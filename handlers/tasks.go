package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendly_console/api"
	"attendly_console/logger"
	"attendly_console/middleware"
	"attendly_console/models"
)

type TaskHandler struct {
	tasks *api.TasksAPI
	users *api.AuthAPI
	now   func() time.Time
	log   *logrus.Entry
}

func NewTaskHandler(tasks *api.TasksAPI, users *api.AuthAPI) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
		users: users,
		now:   time.Now,
		log:   logger.For("tasks"),
	}
}

// taskView is a task with its derived display fields.
type taskView struct {
	models.Task
	StatusKey   models.TaskStatus `json:"status_key"`
	StatusLabel string            `json:"status_label"`
	Overdue     bool              `json:"overdue"`
}

func (h *TaskHandler) view(t models.Task) taskView {
	s := t.NormalizedStatus()
	return taskView{
		Task:        t,
		StatusKey:   s,
		StatusLabel: s.Label(),
		Overdue:     t.Overdue(h.now()),
	}
}

func (h *TaskHandler) views(ts []models.Task) []taskView {
	out := make([]taskView, 0, len(ts))
	for _, t := range ts {
		out = append(out, h.view(t))
	}
	return out
}

// ListTasks renders every task, filtered by normalized status and a
// search over title and assignee.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	status := c.Query("status")
	query := c.Query("q")
	if status != "" && !strings.EqualFold(status, "all") {
		if _, ok := models.ParseStatus(status); !ok {
			respondError(c, models.NewValidationError("status", "Unknown status filter"))
			return
		}
	}

	all, err := h.tasks.All(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("Failed to load tasks")
		respondError(c, err, gin.H{"error": "Failed to load tasks"})
		return
	}

	filtered := models.FilterTasks(all, status, query)

	render(c, http.StatusOK, gin.H{
		"tasks":  h.views(filtered),
		"total":  len(all),
		"status": status,
		"q":      query,
	})
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := idParam(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	render(c, http.StatusOK, gin.H{
		"task":       h.view(*task),
		"can_delete": user.IsAdmin(),
	})
}

type statusForm struct {
	Status string `json:"status"`
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	h.updateStatus(c, "/tasks")
}

func (h *TaskHandler) UpdateMyTaskStatus(c *gin.Context) {
	h.updateStatus(c, "/my-tasks")
}

func (h *TaskHandler) updateStatus(c *gin.Context, page string) {
	id, ok := idParam(c, "id", "task")
	if !ok {
		return
	}
	var form statusForm
	if !bindJSON(c, &form) {
		return
	}

	parsed, ok := models.ParseStatus(form.Status)
	if !ok {
		respondError(c, models.NewValidationError("status", "Unknown status"))
		return
	}
	status := string(parsed)
	patch := models.UpdateTaskRequest{Status: &status}
	if err := patch.Validate(); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.tasks.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.log.WithError(err).WithField("task_id", id).Warn("Failed to update status")
		msg := "Failed to update status"
		if page == "/my-tasks" {
			msg = "Failed to update task"
		}
		respondError(c, err, gin.H{"error": msg})
		return
	}

	msg := "Task marked as " + models.TaskStatus(status).Label()
	if page == "/my-tasks" {
		msg = "Task updated"
	}
	body := gin.H{"message": msg}
	if resp.Task != nil {
		body["task"] = h.view(*resp.Task)
	}
	render(c, http.StatusOK, body)
}

type notesForm struct {
	Notes string `json:"notes"`
}

func (h *TaskHandler) UpdateNotes(c *gin.Context) {
	id, ok := idParam(c, "id", "task")
	if !ok {
		return
	}
	var form notesForm
	if !bindJSON(c, &form) {
		return
	}

	resp, err := h.tasks.Update(c.Request.Context(), id, models.UpdateTaskRequest{Notes: &form.Notes})
	if err != nil {
		h.log.WithError(err).WithField("task_id", id).Warn("Failed to save notes")
		respondError(c, err, gin.H{"error": "Failed to save notes"})
		return
	}

	body := gin.H{"message": "Notes saved successfully"}
	if resp.Task != nil {
		body["task"] = h.view(*resp.Task)
	}
	render(c, http.StatusOK, body)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := idParam(c, "id", "task")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"message": "Task deleted", "redirect": "/tasks"})
}

// MyTasks renders the operator's own tasks grouped by status.
func (h *TaskHandler) MyTasks(c *gin.Context) {
	tasks, err := h.tasks.Mine(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("Failed to load tasks")
		respondError(c, err, gin.H{"error": "Failed to load tasks"})
		return
	}

	groups := models.GroupByStatus(tasks)
	render(c, http.StatusOK, gin.H{
		"pending":     h.views(groups.Pending),
		"in_progress": h.views(groups.InProgress),
		"completed":   h.views(groups.Completed),
		"total":       len(tasks),
	})
}

// CreateTaskForm lists the employees a new task can be assigned to.
func (h *TaskHandler) CreateTaskForm(c *gin.Context) {
	employees, err := h.users.Users(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("Failed to load employees")
		respondError(c, err, gin.H{"error": "Failed to load employees"})
		return
	}
	render(c, http.StatusOK, gin.H{
		"employees":  employees,
		"priorities": []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh},
	})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), req)
	if err != nil {
		h.log.WithError(err).Warn("Failed to create task")
		respondError(c, err, gin.H{"error": "Failed to create task"})
		return
	}

	render(c, http.StatusCreated, gin.H{
		"message":  "Task created successfully",
		"task":     h.view(*task),
		"redirect": "/tasks",
	})
}

// AdminOnly guards the create-task page.
func (h *TaskHandler) AdminOnly(c *gin.Context) {
	if !middleware.CurrentUser(c).IsAdmin() {
		render(c, http.StatusForbidden, gin.H{"error": "Only admins can create tasks"})
		c.Abort()
		return
	}
	c.Next()
}
