package attendance

import (
	"context"

	"attendly_console/camera"
	"attendly_console/models"
)

const defaultRegisteredMessage = "Face registered successfully!"

// Registrar is the slice of the attendance API the registration view uses.
type Registrar interface {
	Users(ctx context.Context) (models.Employees, error)
	RegisterFace(ctx context.Context, req models.RegisterFaceRequest) (*models.RegisterFaceResult, error)
}

// RegisterFlow is one mounted face-registration view. Admins and managers
// may enroll anyone; everyone else only themselves.
type RegisterFlow struct {
	base
	api  Registrar
	user models.User

	users     models.Employees
	targetID  int
	addSample bool
}

func NewRegisterFlow(api Registrar, device camera.Device, user models.User, opts Options) *RegisterFlow {
	r := &RegisterFlow{api: api, user: user}
	r.setup(device, opts, "register-face", func() bool { return true })
	return r
}

// Mount loads the employee list and opens the camera. A failing list is
// ignored; the camera is attempted regardless.
func (r *RegisterFlow) Mount(ctx context.Context) RegisterView {
	users, err := r.api.Users(ctx)

	r.mu.Lock()
	if err != nil {
		r.log.WithError(err).Debug("Employee list unavailable")
	} else if !r.closed {
		r.users = users
	}
	if !r.user.CanManageAttendance() && r.user.ID > 0 {
		r.targetID = r.user.ID
	}
	r.mu.Unlock()

	r.syncCamera()
	return r.View()
}

// Select chooses whose face the next capture enrolls.
func (r *RegisterFlow) Select(id int) (RegisterView, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return RegisterView{}, ErrClosed
	}
	if !r.user.CanManageAttendance() && id != r.user.ID {
		r.mu.Unlock()
		return r.View(), ErrNotAllowed
	}
	if r.capture.State.InFlight() {
		r.mu.Unlock()
		return r.View(), ErrCaptureInFlight
	}
	if len(r.users) > 0 {
		if _, ok := r.users.Find(id); !ok {
			r.mu.Unlock()
			return r.View(), models.NewValidationError("user_id", "Unknown employee")
		}
	}
	r.targetID = id
	r.stopResetLocked()
	r.capture = idle
	r.mu.Unlock()
	return r.View(), nil
}

// SetAddSample toggles whether the next capture is an extra training sample.
func (r *RegisterFlow) SetAddSample(on bool) RegisterView {
	r.mu.Lock()
	r.addSample = on
	r.mu.Unlock()
	return r.View()
}

func (r *RegisterFlow) RetryCamera() (RegisterView, error) {
	err := r.retryCamera()
	return r.View(), err
}

// Capture enrolls one frame for the selected employee. The camera stays on
// so further samples can follow.
func (r *RegisterFlow) Capture() (*models.RegisterFaceResult, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if r.targetID == 0 {
		r.mu.Unlock()
		return nil, models.NewValidationError("user_id", "Please select an employee")
	}
	target, addSample := r.targetID, r.addSample
	stream, seq, err := r.beginCaptureLocked()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	image, err := r.grabFrame(stream, seq)
	if err != nil {
		return nil, err
	}

	result, err := r.api.RegisterFace(r.ctx, models.RegisterFaceRequest{
		UserID:    target,
		Image:     image,
		AddSample: addSample,
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || seq != r.captureSeq {
		return nil, ErrClosed
	}
	if err != nil {
		r.capture = Capture{State: CaptureError, Message: err.Error()}
		return nil, err
	}

	msg := result.Message
	if msg == "" {
		msg = defaultRegisteredMessage
	}
	r.capture = Capture{State: CaptureSuccess, Name: r.targetNameLocked(), Message: msg}
	r.log.WithField("user_id", target).WithField("add_sample", addSample).Info("Face registered")
	return result, nil
}

func (r *RegisterFlow) targetNameLocked() string {
	if r.targetID == 0 {
		return ""
	}
	if r.targetID == r.user.ID {
		return r.user.Name
	}
	if emp, ok := r.users.Find(r.targetID); ok {
		return emp.Name
	}
	return ""
}

func (r *RegisterFlow) Close() {
	r.close()
}

type RegisterView struct {
	CanSelect      bool             `json:"can_select"`
	Users          models.Employees `json:"users"`
	TargetID       int              `json:"target_id,omitempty"`
	TargetName     string           `json:"target_name,omitempty"`
	AddSample      bool             `json:"add_sample"`
	Capture        Capture          `json:"capture"`
	CameraActive   bool             `json:"camera_active"`
	CameraStarting bool             `json:"camera_starting,omitempty"`
	CameraError    string           `json:"camera_error,omitempty"`
}

func (r *RegisterFlow) View() RegisterView {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := RegisterView{
		CanSelect:  r.user.CanManageAttendance(),
		Users:      append(models.Employees{}, r.users...),
		TargetID:   r.targetID,
		TargetName: r.targetNameLocked(),
		AddSample:  r.addSample,
		Capture:    r.capture,
	}
	v.CameraActive, v.CameraStarting, v.CameraError = r.cameraView()
	return v
}
