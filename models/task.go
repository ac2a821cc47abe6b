package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DeadlineLayout is the date format the task API expects.
const DeadlineLayout = "2006-01-02"

var statusSeparators = regexp.MustCompile(`[\s-]+`)

// NormalizeStatus maps the spellings the backend has used over time
// ("In Progress", "in-progress", "IN_PROGRESS", "inprogress") onto the
// canonical statuses. Anything unrecognized is treated as pending.
func NormalizeStatus(raw string) TaskStatus {
	if s, ok := ParseStatus(raw); ok {
		return s
	}
	return StatusPending
}

// ParseStatus is NormalizeStatus without the pending fallback.
func ParseStatus(raw string) (TaskStatus, bool) {
	switch statusSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "_") {
	case "pending":
		return StatusPending, true
	case "in_progress", "inprogress":
		return StatusInProgress, true
	case "completed", "complete", "done":
		return StatusCompleted, true
	default:
		return "", false
	}
}

func (s TaskStatus) Label() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Pending"
	}
}

type Task struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Priority     Priority   `json:"priority"`
	Status       string     `json:"status"`
	Deadline     string     `json:"deadline,omitempty"`
	AssignedTo   int        `json:"assigned_to,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    *Timestamp `json:"created_at,omitempty"`
	UpdatedAt    *Timestamp `json:"updated_at,omitempty"`
}

func (t Task) NormalizedStatus() TaskStatus {
	return NormalizeStatus(t.Status)
}

// Overdue reports whether the deadline has passed on an unfinished task.
func (t Task) Overdue(now time.Time) bool {
	if t.Deadline == "" || t.NormalizedStatus() == StatusCompleted {
		return false
	}
	d, err := time.ParseInLocation(DeadlineLayout, t.Deadline, now.Location())
	if err != nil {
		return false
	}
	return now.After(d.AddDate(0, 0, 1))
}

func (t *Task) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("task has no id")
	}
	return nil
}

type Tasks []Task

func (ts Tasks) Validate() error {
	for i := range ts {
		if err := ts[i].Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}

// FilterTasks keeps tasks whose title or assignee name contains query
// (case-insensitive) and whose normalized status matches statusFilter.
// An empty filter or "all" matches every status; an unknown one matches
// nothing.
func FilterTasks(tasks []Task, statusFilter, query string) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	matchAll := statusFilter == "" || strings.EqualFold(statusFilter, "all")
	want, known := ParseStatus(statusFilter)
	if !matchAll && !known {
		return []Task{}
	}

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.AssigneeName), q) {
			continue
		}
		if !matchAll && t.NormalizedStatus() != want {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TaskGroups buckets tasks into board columns.
type TaskGroups struct {
	Pending    []Task `json:"pending"`
	InProgress []Task `json:"in_progress"`
	Completed  []Task `json:"completed"`
}

func GroupByStatus(tasks []Task) TaskGroups {
	g := TaskGroups{Pending: []Task{}, InProgress: []Task{}, Completed: []Task{}}
	for _, t := range tasks {
		switch t.NormalizedStatus() {
		case StatusInProgress:
			g.InProgress = append(g.InProgress, t)
		case StatusCompleted:
			g.Completed = append(g.Completed, t)
		default:
			g.Pending = append(g.Pending, t)
		}
	}
	return g
}

type TaskStats struct {
	Total                int                 `json:"total"`
	Completed            int                 `json:"completed"`
	InProgress           int                 `json:"in_progress"`
	Pending              int                 `json:"pending"`
	Overdue              int                 `json:"overdue"`
	CompletionRate       float64             `json:"completion_rate"`
	PriorityDistribution map[Priority]int    `json:"priority_distribution,omitempty"`
	StatusDistribution   map[TaskStatus]int  `json:"status_distribution,omitempty"`
	TeamPerformance      []MemberPerformance `json:"team_performance,omitempty"`
	RecentTasks          []Task              `json:"recent_tasks,omitempty"`
}

func (s *TaskStats) Validate() error {
	if s.Total < 0 || s.Completed > s.Total {
		return fmt.Errorf("inconsistent task totals %d/%d", s.Completed, s.Total)
	}
	return nil
}

type MemberPerformance struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	TotalTasks     int     `json:"total_tasks"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Deadline    string   `json:"deadline"`
	AssignedTo  int      `json:"assigned_to"`
}

// Validate checks the required fields and lowercases the priority in place.
func (r *CreateTaskRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Priority = Priority(strings.ToLower(strings.TrimSpace(string(r.Priority))))

	if r.Title == "" || r.Priority == "" || r.AssignedTo <= 0 || r.Deadline == "" {
		return NewValidationError("", "Please fill in all required fields")
	}
	switch r.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return NewValidationError("priority", "Priority must be low, medium or high")
	}
	if _, err := time.Parse(DeadlineLayout, r.Deadline); err != nil {
		return NewValidationError("deadline", "Deadline must be a date in yyyy-MM-dd format")
	}
	return nil
}

// UpdateTaskRequest carries a partial update; nil fields are left unchanged.
type UpdateTaskRequest struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (r UpdateTaskRequest) Validate() error {
	if r.Status == nil && r.Notes == nil {
		return NewValidationError("", "Nothing to update")
	}
	if r.Status != nil && strings.TrimSpace(*r.Status) == "" {
		return NewValidationError("status", "Status is required")
	}
	return nil
}

type UpdateTaskResponse struct {
	Message string `json:"message"`
	Task    *Task  `json:"task,omitempty"`
}
