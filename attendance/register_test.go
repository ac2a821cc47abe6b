package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"attendly_console/models"
)

type fakeRegistrar struct {
	mu       sync.Mutex
	users    models.Employees
	usersErr error
	requests []models.RegisterFaceRequest
	result   models.RegisterFaceResult
	err      error
}

func (r *fakeRegistrar) Users(ctx context.Context) (models.Employees, error) {
	if r.usersErr != nil {
		return nil, r.usersErr
	}
	return r.users, nil
}

func (r *fakeRegistrar) RegisterFace(ctx context.Context, req models.RegisterFaceRequest) (*models.RegisterFaceResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	res := r.result
	return &res, nil
}

var staff = models.Employees{
	{ID: 1, Name: "Ada", Role: models.RoleAdmin},
	{ID: 2, Name: "Jane", Role: models.RoleEmployee},
}

func TestRegisterFlow_EmployeeRegistersSelf(t *testing.T) {
	reg := &fakeRegistrar{usersErr: errors.New("Not authorized")}
	dev := newFakeDevice()
	user := models.User{ID: 2, Name: "Jane", Role: models.RoleEmployee}
	f := NewRegisterFlow(reg, dev, user, Options{Scheduler: &manualScheduler{}})
	defer f.Close()

	v := f.Mount(context.Background())
	if v.CanSelect || v.TargetID != 2 || v.TargetName != "Jane" {
		t.Errorf("employee should be preselected, got %+v", v)
	}
	if !v.CameraActive {
		t.Errorf("camera should start on mount")
	}
	if _, err := f.Select(1); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed, got %v", err)
	}

	res, err := f.Capture()
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "" {
		t.Errorf("unexpected backend message %q", res.Message)
	}
	v = f.View()
	if v.Capture.State != CaptureSuccess || v.Capture.Message != "Face registered successfully!" {
		t.Errorf("unexpected capture %+v", v.Capture)
	}
	if !v.CameraActive {
		t.Errorf("camera should stay on after registration")
	}
	if len(reg.requests) != 1 || reg.requests[0].UserID != 2 {
		t.Errorf("unexpected requests %+v", reg.requests)
	}
}

func TestRegisterFlow_AdminSelectsAndAddsSample(t *testing.T) {
	reg := &fakeRegistrar{users: staff, result: models.RegisterFaceResult{Message: "Face registered", EmployeeID: 9}}
	admin := models.User{ID: 1, Name: "Ada", Role: models.RoleAdmin}
	f := NewRegisterFlow(reg, newFakeDevice(), admin, Options{Scheduler: &manualScheduler{}})
	defer f.Close()

	v := f.Mount(context.Background())
	if !v.CanSelect || v.TargetID != 0 || len(v.Users) != 2 {
		t.Fatalf("unexpected view %+v", v)
	}

	var verr *models.ValidationError
	if _, err := f.Capture(); !errors.As(err, &verr) {
		t.Errorf("capture without target should fail validation, got %v", err)
	}
	if _, err := f.Select(42); !errors.As(err, &verr) {
		t.Errorf("unknown employee should fail validation, got %v", err)
	}

	if _, err := f.Select(2); err != nil {
		t.Fatal(err)
	}
	f.SetAddSample(true)
	if _, err := f.Capture(); err != nil {
		t.Fatal(err)
	}

	req := reg.requests[0]
	if req.UserID != 2 || !req.AddSample {
		t.Errorf("unexpected request %+v", req)
	}
	if v := f.View(); v.Capture.Name != "Jane" || v.Capture.Message != "Face registered" {
		t.Errorf("unexpected capture %+v", v.Capture)
	}
}

func TestRegisterFlow_FailureAndClose(t *testing.T) {
	reg := &fakeRegistrar{users: staff, err: errors.New("Face not clear enough")}
	dev := newFakeDevice()
	f := NewRegisterFlow(reg, dev, models.User{ID: 1, Role: models.RoleManager}, Options{Scheduler: &manualScheduler{}})

	f.Mount(context.Background())
	f.Select(2)
	if _, err := f.Capture(); err == nil {
		t.Fatal("expected error")
	}
	if v := f.View(); v.Capture.State != CaptureError || v.Capture.Message != "Face not clear enough" || !v.CameraActive {
		t.Errorf("unexpected view %+v", v)
	}

	f.Close()
	if dev.Tracks()[0].StopCount() != 1 {
		t.Errorf("close should stop the camera once")
	}
}
