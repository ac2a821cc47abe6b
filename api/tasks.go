package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"attendly_console/client"
	"attendly_console/models"
)

type TasksAPI struct {
	c Caller
}

func NewTasksAPI(c Caller) *TasksAPI {
	return &TasksAPI{c: c}
}

func (t *TasksAPI) All(ctx context.Context) (models.Tasks, error) {
	var tasks models.Tasks
	if err := t.c.Do(ctx, client.Request{Path: "/tasks"}, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (t *TasksAPI) Mine(ctx context.Context) (models.Tasks, error) {
	var tasks models.Tasks
	if err := t.c.Do(ctx, client.Request{Path: "/tasks/my-tasks"}, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (t *TasksAPI) Get(ctx context.Context, id int) (*models.Task, error) {
	var task models.Task
	if err := t.c.Do(ctx, client.Request{Path: taskPath(id)}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *TasksAPI) Stats(ctx context.Context) (*models.TaskStats, error) {
	var stats models.TaskStats
	if err := t.c.Do(ctx, client.Request{Path: "/tasks/stats"}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (t *TasksAPI) Create(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	var task models.Task
	err := t.c.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/tasks",
		Body:   req,
	}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// updateResult accepts both {"message": ..., "task": {...}} and a bare task.
type updateResult struct {
	models.UpdateTaskResponse
}

func (u *updateResult) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Message string          `json:"message"`
		Task    json.RawMessage `json:"task"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if len(wrapped.Task) > 0 && !bytes.Equal(wrapped.Task, []byte("null")) {
		var task models.Task
		if err := json.Unmarshal(wrapped.Task, &task); err != nil {
			return err
		}
		u.Message, u.Task = wrapped.Message, &task
		return nil
	}

	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return err
	}
	u.Message = wrapped.Message
	if task.ID > 0 {
		u.Task = &task
	}
	return nil
}

func (t *TasksAPI) Update(ctx context.Context, id int, patch models.UpdateTaskRequest) (*models.UpdateTaskResponse, error) {
	var resp updateResult
	err := t.c.Do(ctx, client.Request{
		Method: http.MethodPut,
		Path:   taskPath(id),
		Body:   patch,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Message == "" {
		resp.Message = "Task updated"
	}
	return &resp.UpdateTaskResponse, nil
}

func (t *TasksAPI) Delete(ctx context.Context, id int) error {
	return t.c.Do(ctx, client.Request{Method: http.MethodDelete, Path: taskPath(id)}, nil)
}

func taskPath(id int) string {
	return fmt.Sprintf("/tasks/%d", id)
}
