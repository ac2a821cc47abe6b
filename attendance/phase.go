package attendance

import (
	"fmt"

	"attendly_console/models"
)

// Phase is the attendance view currently shown. Exactly one applies at a time.
type Phase string

const (
	PhaseLoadingStatus   Phase = "loading_status"
	PhaseUnregistered    Phase = "unregistered"
	PhaseCompleted       Phase = "completed"
	PhaseCheckedIn       Phase = "checked_in"
	PhaseCheckoutCapture Phase = "checkout_capture"
	PhaseCheckInCapture  Phase = "check_in_capture"
)

// derivePhase is the only place the view is decided. A missing status
// (never loaded successfully) renders as unregistered.
func derivePhase(loaded bool, status *models.AttendanceStatus, checkoutMode bool) Phase {
	switch {
	case !loaded:
		return PhaseLoadingStatus
	case status == nil || !status.Registered:
		return PhaseUnregistered
	case status.CheckedOut:
		return PhaseCompleted
	case status.CheckedIn && checkoutMode:
		return PhaseCheckoutCapture
	case status.CheckedIn:
		return PhaseCheckedIn
	default:
		return PhaseCheckInCapture
	}
}

// NeedsCamera reports whether the phase holds a live stream.
func (p Phase) NeedsCamera() bool {
	return p == PhaseCheckInCapture || p == PhaseCheckoutCapture
}

// Action is the submission tag for a capture phase.
func (p Phase) Action() (models.AttendanceAction, bool) {
	switch p {
	case PhaseCheckInCapture:
		return models.ActionCheckIn, true
	case PhaseCheckoutCapture:
		return models.ActionCheckOut, true
	default:
		return "", false
	}
}

type CaptureState string

const (
	CaptureIdle       CaptureState = "idle"
	CaptureCapturing  CaptureState = "capturing"
	CaptureProcessing CaptureState = "processing"
	CaptureSuccess    CaptureState = "success"
	CaptureError      CaptureState = "error"
)

func (s CaptureState) InFlight() bool {
	return s == CaptureCapturing || s == CaptureProcessing
}

// Capture is the nested capture sub-state. Name and Message are set for
// success; Message alone for error.
type Capture struct {
	State   CaptureState `json:"state"`
	Name    string       `json:"name,omitempty"`
	Message string       `json:"message,omitempty"`
}

var idle = Capture{State: CaptureIdle}

// FormatElapsed renders seconds as HH:MM:SS. Negative means unknown.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		return "--:--:--"
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
