package attendance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"attendly_console/camera"
	"attendly_console/logger"
)

var (
	ErrCaptureInFlight = errors.New("a capture is already in progress")
	ErrNotCapturing    = errors.New("nothing to capture in the current view")
	ErrCameraInactive  = errors.New("camera is not active")
	ErrNotAllowed      = errors.New("not allowed for your role")
	ErrWrongPhase      = errors.New("action not available in the current view")
	ErrClosed          = errors.New("view was closed")
)

type Options struct {
	// SuccessDelay is how long a success badge stays before the view resets.
	SuccessDelay time.Duration
	Now          func() time.Time
	Scheduler    Scheduler
	Logger       *logrus.Entry
}

func (o Options) withDefaults(component string) Options {
	if o.SuccessDelay <= 0 {
		o.SuccessDelay = 1500 * time.Millisecond
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Scheduler == nil {
		o.Scheduler = realScheduler{}
	}
	if o.Logger == nil {
		o.Logger = logger.For(component)
	}
	return o
}

// base holds what both capture views share: the lock, the camera, and the
// view lifetime. Everything below mu is guarded by it.
type base struct {
	device camera.Device
	opts   Options
	log    *logrus.Entry

	// ctx lives as long as the view; close cancels it so late responses
	// and camera acquisitions are dropped.
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	wantsCamera func() bool
	stream      *camera.Stream
	acquiring   bool
	cameraErr   string
	capture     Capture
	captureSeq  uint64
	resetTimer  Timer
}

func (b *base) setup(device camera.Device, opts Options, component string, wantsCamera func() bool) {
	b.opts = opts.withDefaults(component)
	b.device = device
	b.log = b.opts.Logger
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.wantsCamera = wantsCamera
	b.capture = idle
}

// syncCamera brings the camera in line with the current view: it acquires
// a stream when one is wanted and none is held, and releases it otherwise.
// The device is opened outside the lock; a stream that arrives after the
// view stopped wanting it is stopped at once.
func (b *base) syncCamera() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if !b.wantsCamera() {
		stream := b.stream
		b.stream = nil
		b.mu.Unlock()
		if stream != nil {
			stream.Stop()
			b.log.Debug("Camera released")
		}
		return
	}
	if b.stream != nil || b.acquiring {
		b.mu.Unlock()
		return
	}
	b.acquiring = true
	b.cameraErr = ""
	b.mu.Unlock()

	stream, err := b.device.Open(b.ctx)

	b.mu.Lock()
	b.acquiring = false
	if err != nil {
		if !b.closed && b.wantsCamera() {
			b.cameraErr = err.Error()
		}
		b.mu.Unlock()
		b.log.WithError(err).Warn("Camera unavailable")
		return
	}
	if b.closed || !b.wantsCamera() || b.stream != nil {
		b.mu.Unlock()
		stream.Stop()
		b.log.Debug("Dropped camera stream acquired after the view moved on")
		return
	}
	b.stream = stream
	b.mu.Unlock()
	b.log.Debug("Camera acquired")
}

// beginCaptureLocked moves the capture sub-state to capturing and hands back the
// stream to read from. Called with mu held.
func (b *base) beginCaptureLocked() (*camera.Stream, uint64, error) {
	if b.capture.State.InFlight() {
		return nil, 0, ErrCaptureInFlight
	}
	if b.stream == nil || !b.stream.Active() {
		return nil, 0, ErrCameraInactive
	}
	b.stopResetLocked()
	b.captureSeq++
	b.capture = Capture{State: CaptureCapturing}
	return b.stream, b.captureSeq, nil
}

// grabFrame snapshots and encodes one frame, then moves to processing.
func (b *base) grabFrame(stream *camera.Stream, seq uint64) (string, error) {
	image, err := camera.Capture(b.ctx, stream)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || seq != b.captureSeq {
		return "", ErrClosed
	}
	if err != nil {
		b.capture = Capture{State: CaptureError, Message: err.Error()}
		return "", err
	}
	b.capture = Capture{State: CaptureProcessing}
	return image, nil
}

func (b *base) stopResetLocked() {
	if b.resetTimer != nil {
		b.resetTimer.Stop()
		b.resetTimer = nil
	}
}

func (b *base) cameraView() (active, starting bool, errMsg string) {
	return b.stream != nil && b.stream.Active(), b.acquiring, b.cameraErr
}

// retryCamera clears a camera error and tries again.
func (b *base) retryCamera() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if !b.wantsCamera() {
		b.mu.Unlock()
		return ErrNotCapturing
	}
	if b.stream != nil && !b.stream.Active() {
		b.stream = nil
	}
	b.cameraErr = ""
	b.mu.Unlock()

	b.syncCamera()
	return nil
}

// close releases the camera, cancels the pending reset, and makes every
// outstanding response a no-op. It is safe to call more than once.
func (b *base) close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	stream := b.stream
	b.stream = nil
	b.stopResetLocked()
	b.mu.Unlock()

	b.cancel()
	if stream != nil {
		stream.Stop()
	}
	b.log.Debug("View closed")
}
