// Package attendance drives the check-in/check-out and face-registration
// views: which phase is shown, when the camera is held, and how a captured
// frame is submitted.
package attendance

import (
	"context"
	"time"

	"attendly_console/camera"
	"attendly_console/models"
)

// StatusSource is the slice of the attendance API the capture view uses.
type StatusSource interface {
	StatusToday(ctx context.Context) (*models.AttendanceStatus, error)
	Mark(ctx context.Context, image string, action models.AttendanceAction) (*models.AttendanceResult, error)
}

// Flow is one mounted attendance view. It is safe for concurrent use; a
// closed Flow ignores every late response.
type Flow struct {
	base
	api StatusSource

	loaded       bool
	status       *models.AttendanceStatus
	statusErr    error
	fetchedAt    time.Time
	checkoutMode bool
	epoch        uint64
}

func NewFlow(api StatusSource, device camera.Device, opts Options) *Flow {
	f := &Flow{api: api}
	f.setup(device, opts, "attendance", func() bool { return f.phaseLocked().NeedsCamera() })
	return f
}

func (f *Flow) phaseLocked() Phase {
	return derivePhase(f.loaded, f.status, f.checkoutMode)
}

// Load fetches today's status and syncs the camera. It is the mount step.
func (f *Flow) Load(ctx context.Context) View {
	if err := f.Refresh(ctx); err != nil && err != ErrClosed {
		f.log.WithError(err).Warn("Attendance status unavailable")
	}
	return f.View()
}

// Refresh re-fetches today's status. Only the most recent fetch may apply
// its result; earlier ones that finish late are dropped. A failed fetch
// leaves no status, so the view shows the unregistered branch with the
// error attached.
func (f *Flow) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.epoch++
	epoch := f.epoch
	f.mu.Unlock()

	status, err := f.api.StatusToday(ctx)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if epoch != f.epoch {
		f.mu.Unlock()
		return nil
	}
	f.loaded = true
	if err != nil {
		f.status = nil
		f.statusErr = err
		f.checkoutMode = false
	} else {
		f.status = status
		f.statusErr = nil
		f.fetchedAt = f.opts.Now()
		if status.CheckedOut {
			f.checkoutMode = false
		}
	}
	f.mu.Unlock()

	f.syncCamera()
	return err
}

// StartCheckout enters checkout capture from the checked-in summary.
func (f *Flow) StartCheckout() (View, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return View{}, ErrClosed
	}
	if f.phaseLocked() != PhaseCheckedIn {
		f.mu.Unlock()
		return f.View(), ErrWrongPhase
	}
	f.checkoutMode = true
	f.stopResetLocked()
	f.capture = idle
	f.mu.Unlock()

	f.syncCamera()
	return f.View(), nil
}

// CancelCheckout returns to the checked-in summary without submitting.
func (f *Flow) CancelCheckout() (View, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return View{}, ErrClosed
	}
	if f.phaseLocked() != PhaseCheckoutCapture {
		f.mu.Unlock()
		return f.View(), ErrWrongPhase
	}
	if f.capture.State.InFlight() {
		f.mu.Unlock()
		return f.View(), ErrCaptureInFlight
	}
	f.checkoutMode = false
	f.capture = idle
	f.mu.Unlock()

	f.syncCamera()
	return f.View(), nil
}

func (f *Flow) RetryCamera() (View, error) {
	err := f.retryCamera()
	return f.View(), err
}

// Capture snapshots the camera and submits the frame with the action of the
// current phase. While one capture is outstanding every other call fails
// with ErrCaptureInFlight and sends nothing.
func (f *Flow) Capture() (*models.AttendanceResult, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrClosed
	}
	action, ok := f.phaseLocked().Action()
	if !ok {
		f.mu.Unlock()
		return nil, ErrNotCapturing
	}
	stream, seq, err := f.beginCaptureLocked()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	image, err := f.grabFrame(stream, seq)
	if err != nil {
		return nil, err
	}

	result, err := f.api.Mark(f.ctx, image, action)

	f.mu.Lock()
	if f.closed || seq != f.captureSeq {
		f.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		f.capture = Capture{State: CaptureError, Message: err.Error()}
		f.mu.Unlock()
		f.log.WithError(err).WithField("action", action).Info("Attendance capture rejected")
		return nil, err
	}

	f.applyResultLocked(action, result)
	f.checkoutMode = false
	f.capture = Capture{State: CaptureSuccess, Name: result.EmployeeName, Message: result.Message}
	f.resetTimer = f.opts.Scheduler.AfterFunc(f.opts.SuccessDelay, func() { f.afterSuccess(seq) })
	f.mu.Unlock()

	f.log.WithField("action", action).WithField("employee", result.EmployeeName).Info("Attendance marked")
	f.syncCamera()
	return result, nil
}

// applyResultLocked patches the local status so the view moves on without
// waiting for the confirming refetch.
func (f *Flow) applyResultLocked(action models.AttendanceAction, r *models.AttendanceResult) {
	s := models.AttendanceStatus{Registered: true}
	if f.status != nil {
		s = *f.status
	}

	switch action {
	case models.ActionCheckIn:
		s.CheckedIn = true
		s.MarkedToday = true
		if r.CheckInTime != nil {
			s.CheckInTime = r.CheckInTime
		}
	case models.ActionCheckOut:
		s.CheckedIn = true
		s.CheckedOut = true
		if r.CheckOutTime != nil {
			s.CheckOutTime = r.CheckOutTime
		}
		if r.CheckInTime != nil {
			s.CheckInTime = r.CheckInTime
		}
	}
	if r.ElapsedSeconds != nil {
		s.ElapsedSeconds = r.ElapsedSeconds
		f.fetchedAt = f.opts.Now()
	}
	f.status = &s
	f.statusErr = nil
}

func (f *Flow) afterSuccess(seq uint64) {
	f.mu.Lock()
	if f.closed || seq != f.captureSeq {
		f.mu.Unlock()
		return
	}
	f.resetTimer = nil
	f.capture = idle
	f.mu.Unlock()

	if err := f.Refresh(f.ctx); err != nil && err != ErrClosed {
		f.log.WithError(err).Warn("Confirming status refetch failed")
	}
}

// Close is the unmount step.
func (f *Flow) Close() {
	f.close()
}

// View is the rendered state of the attendance page.
type View struct {
	Phase          Phase                    `json:"phase"`
	Action         models.AttendanceAction  `json:"action,omitempty"`
	Status         *models.AttendanceStatus `json:"status,omitempty"`
	StatusError    string                   `json:"status_error,omitempty"`
	Capture        Capture                  `json:"capture"`
	CameraActive   bool                     `json:"camera_active"`
	CameraStarting bool                     `json:"camera_starting,omitempty"`
	CameraError    string                   `json:"camera_error,omitempty"`
	ElapsedSeconds int64                    `json:"elapsed_seconds"`
	Elapsed        string                   `json:"elapsed"`
	CheckInTime    string                   `json:"check_in_time"`
	CheckOutTime   string                   `json:"check_out_time"`
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	phase := f.phaseLocked()
	action, _ := phase.Action()
	v := View{
		Phase:   phase,
		Action:  action,
		Capture: f.capture,
	}
	v.CameraActive, v.CameraStarting, v.CameraError = f.cameraView()
	if f.statusErr != nil {
		v.StatusError = f.statusErr.Error()
	}

	var checkIn, checkOut *models.Timestamp
	v.ElapsedSeconds = -1
	if f.status != nil {
		s := *f.status
		v.Status = &s
		v.ElapsedSeconds = f.elapsedLocked()
		checkIn, checkOut = s.CheckInTime, s.CheckOutTime
	}
	v.CheckInTime, v.CheckOutTime = checkIn.Clock(), checkOut.Clock()
	v.Elapsed = FormatElapsed(v.ElapsedSeconds)
	return v
}

// elapsedLocked derives the shift length at render time: the server's value
// advanced by the time since it was fetched while the shift is open. It
// returns -1 when unknown.
func (f *Flow) elapsedLocked() int64 {
	s := f.status
	if !s.CheckedIn {
		return -1
	}
	if s.ElapsedSeconds != nil {
		if s.CheckedOut {
			return *s.ElapsedSeconds
		}
		return *s.ElapsedSeconds + int64(f.opts.Now().Sub(f.fetchedAt)/time.Second)
	}
	if s.CheckInTime == nil {
		return -1
	}
	end := f.opts.Now()
	if s.CheckedOut {
		if s.CheckOutTime == nil {
			return -1
		}
		end = s.CheckOutTime.Time
	}
	if d := end.Sub(s.CheckInTime.Time); d >= 0 {
		return int64(d / time.Second)
	}
	return -1
}
