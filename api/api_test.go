package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"attendly_console/client"
	"attendly_console/models"
	"attendly_console/testutil"
)

type memorySaver struct {
	name string
	buf  bytes.Buffer
	err  error
}

func (m *memorySaver) Save(name string, r io.Reader) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.name = name
	return io.Copy(&m.buf, r)
}

func newClient(t *testing.T) (*testutil.Backend, *client.Client) {
	t.Helper()
	backend := testutil.NewBackend(t)
	store := testutil.NewSessionStore(t)
	testutil.LoginAs(t, store, models.User{ID: 1, Email: "a@example.com", Role: models.RoleAdmin})
	return backend, client.New(backend.URL(), store, time.Second)
}

func TestAuthAPI_Login(t *testing.T) {
	backend, c := newClient(t)
	auth := NewAuthAPI(c)
	ctx := context.Background()

	backend.JSON(http.MethodPost, "/auth/login", http.StatusOK, gin.H{
		"token": "tok",
		"user":  gin.H{"name": "Jane", "email": "jane@example.com", "role": "employee"},
	})
	resp, err := auth.Login(ctx, "jane@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if resp.SessionToken() != "tok" || resp.User.Name != "Jane" {
		t.Errorf("unexpected login response %+v", resp)
	}
	if calls := backend.Calls(http.MethodPost, "/auth/login"); calls[0].Auth != "" {
		t.Errorf("login must not carry the stored token")
	}

	backend.JSON(http.MethodPost, "/auth/login", http.StatusUnauthorized, gin.H{})
	if _, err := auth.Login(ctx, "jane@example.com", "bad"); err == nil || err.Error() != "Invalid credentials" {
		t.Errorf("expected Invalid credentials, got %v", err)
	}

	backend.Handle(http.MethodPost, "/auth/login", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "boom")
	})
	if _, err := auth.Login(ctx, "jane@example.com", "bad"); err == nil || err.Error() != "Login failed" {
		t.Errorf("expected Login failed, got %v", err)
	}
}

func TestAuthAPI_RegisterFallbacks(t *testing.T) {
	backend, c := newClient(t)
	backend.JSON(http.MethodPost, "/auth/register", http.StatusBadRequest, gin.H{"message": "nope"})

	_, err := NewAuthAPI(c).Register(context.Background(), models.RegisterRequest{Name: "J", Email: "j@x", Password: "p"})
	if err == nil || err.Error() != "Could not create account" {
		t.Errorf("expected Could not create account, got %v", err)
	}
}

func TestTasksAPI_UpdateShapes(t *testing.T) {
	backend, c := newClient(t)
	tasks := NewTasksAPI(c)
	status := "completed"

	backend.JSON(http.MethodPut, "/tasks/4", http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    gin.H{"id": 4, "title": "Ship", "status": "completed"},
	})
	resp, err := tasks.Update(context.Background(), 4, models.UpdateTaskRequest{Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Task updated successfully" || resp.Task == nil || resp.Task.ID != 4 {
		t.Errorf("unexpected wrapped response %+v", resp)
	}

	backend.JSON(http.MethodPut, "/tasks/4", http.StatusOK, gin.H{"id": 4, "title": "Ship", "status": "Completed"})
	resp, err = tasks.Update(context.Background(), 4, models.UpdateTaskRequest{Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Task == nil || resp.Task.NormalizedStatus() != models.StatusCompleted {
		t.Errorf("unexpected bare response %+v", resp)
	}

	var sent map[string]any
	calls := backend.Calls(http.MethodPut, "/tasks/4")
	if err := json.Unmarshal(calls[0].Body, &sent); err != nil {
		t.Fatal(err)
	}
	if _, ok := sent["notes"]; ok || sent["status"] != "completed" {
		t.Errorf("patch should only carry status, got %v", sent)
	}
}

func TestAttendanceAPI_BulkDeleteUsesRepeatedParams(t *testing.T) {
	backend, c := newClient(t)
	backend.JSON(http.MethodDelete, "/attendance/bulk", http.StatusOK, gin.H{"message": "Deleted", "deleted": 3})

	res, err := NewAttendanceAPI(c, &memorySaver{}).BulkDelete(context.Background(), []int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if res.Deleted != 3 {
		t.Errorf("unexpected result %+v", res)
	}

	call := backend.Calls(http.MethodDelete, "/attendance/bulk")[0]
	if call.Query != "record_ids=1&record_ids=2&record_ids=3" {
		t.Errorf("unexpected query %q", call.Query)
	}
	if len(call.Body) != 0 {
		t.Errorf("bulk delete must not send a body, got %q", call.Body)
	}
}

func TestAttendanceAPI_ExportCSV(t *testing.T) {
	backend, c := newClient(t)
	backend.Handle(http.MethodGet, "/attendance/export", func(c *gin.Context) {
		c.Header("Content-Disposition", `attachment; filename="attendance_2026-10.csv"`)
		c.Data(http.StatusOK, "text/csv", []byte("id,name\n1,Jane\n"))
	})

	saver := &memorySaver{}
	res, err := NewAttendanceAPI(c, saver).Export(context.Background(), models.ExportQuery{Format: models.ExportCSV})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.Filename != "attendance_2026-10.csv" || saver.name != res.Filename {
		t.Errorf("unexpected result %+v (saved %q)", res, saver.name)
	}
	if saver.buf.String() != "id,name\n1,Jane\n" {
		t.Errorf("unexpected saved body %q", saver.buf.String())
	}
}

func TestAttendanceAPI_ExportSaveFailureStillSucceeds(t *testing.T) {
	backend, c := newClient(t)
	backend.Handle(http.MethodGet, "/attendance/export", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/csv", []byte("id\n"))
	})

	saver := &memorySaver{err: errors.New("disk full")}
	res, err := NewAttendanceAPI(c, saver).Export(context.Background(), models.ExportQuery{Format: models.ExportCSV})
	if err != nil {
		t.Fatalf("save failure must not propagate: %v", err)
	}
	if !res.Success || res.Filename == "" {
		t.Errorf("expected success marker, got %+v", res)
	}
}

func TestAttendanceAPI_ExportJSON(t *testing.T) {
	backend, c := newClient(t)
	backend.JSON(http.MethodGet, "/attendance/export", http.StatusOK, []gin.H{
		{"id": 1, "user_id": 3, "date": "2026-10-15", "checkInTime": "2026-10-15T09:00:00"},
	})

	res, err := NewAttendanceAPI(c, &memorySaver{}).Export(context.Background(), models.ExportQuery{Format: models.ExportJSON})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 || res.Records[0].UserID != 3 {
		t.Errorf("unexpected records %+v", res.Records)
	}
	if q := backend.Calls(http.MethodGet, "/attendance/export")[0].Query; q != "format=json" {
		t.Errorf("unexpected query %q", q)
	}
}

func TestAttendanceAPI_ErrorMessages(t *testing.T) {
	backend, c := newClient(t)
	a := NewAttendanceAPI(c, &memorySaver{})
	ctx := context.Background()

	backend.JSON(http.MethodPost, "/attendance/register", http.StatusBadRequest, gin.H{
		"detail": gin.H{"message": "Face not clear enough", "issues": []string{"blur"}},
	})
	_, err := a.RegisterFace(ctx, models.RegisterFaceRequest{UserID: 2, Image: "data:image/jpeg;base64,AA=="})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Detail != "Face not clear enough" || len(apiErr.Issues) != 1 {
		t.Errorf("unexpected register error %v", err)
	}

	backend.JSON(http.MethodGet, "/attendance/status-today", http.StatusInternalServerError, gin.H{})
	if _, err := a.StatusToday(ctx); err == nil || err.Error() != "Failed to fetch status" {
		t.Errorf("expected Failed to fetch status, got %v", err)
	}

	backend.JSON(http.MethodPost, "/attendance/mark", http.StatusBadRequest, gin.H{"error": "No face detected"})
	if _, err := a.CheckIn(ctx, "data:"); err == nil || err.Error() != "No face detected" {
		t.Errorf("expected No face detected, got %v", err)
	}
}

func TestAttendanceAPI_StatusRejectsInconsistentBody(t *testing.T) {
	backend, c := newClient(t)
	backend.JSON(http.MethodGet, "/attendance/status-today", http.StatusOK, gin.H{
		"registered": true, "checkedIn": false, "checkedOut": true,
	})

	_, err := NewAttendanceAPI(c, &memorySaver{}).StatusToday(context.Background())
	var malformed *client.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Errorf("expected *MalformedResponseError, got %v", err)
	}
}
