package attendance

import (
	"context"
	"image"
	"sync"
	"time"

	"attendly_console/camera"
	"attendly_console/models"
)

type countingTrack struct {
	mu    sync.Mutex
	stops int
}

func (t *countingTrack) Kind() string { return "video" }

func (t *countingTrack) Stop() {
	t.mu.Lock()
	t.stops++
	t.mu.Unlock()
}

func (t *countingTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops > 0
}

func (t *countingTrack) StopCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

type fakeDevice struct {
	mu      sync.Mutex
	opens   int
	err     error
	tracks  []*countingTrack
	gate    chan struct{}
	perOpen int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{perOpen: 1}
}

func (d *fakeDevice) Open(ctx context.Context) (*camera.Stream, error) {
	d.mu.Lock()
	d.opens++
	gate, err, n := d.gate, d.err, d.perOpen
	d.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	tracks := make([]camera.Track, n)
	d.mu.Lock()
	for i := range tracks {
		t := &countingTrack{}
		d.tracks = append(d.tracks, t)
		tracks[i] = t
	}
	d.mu.Unlock()

	frame := func(context.Context) (image.Image, error) {
		return image.NewGray(image.Rect(0, 0, 8, 8)), nil
	}
	return camera.NewStream(frame, tracks...), nil
}

func (d *fakeDevice) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

func (d *fakeDevice) Tracks() []*countingTrack {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*countingTrack(nil), d.tracks...)
}

func (d *fakeDevice) SetError(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

type markCall struct {
	Image  string
	Action models.AttendanceAction
}

type fakeAPI struct {
	mu          sync.Mutex
	status      models.AttendanceStatus
	statusErr   error
	statusCalls int
	statusGate  chan struct{}

	marks    []markCall
	markGate chan struct{}
	markSeen chan struct{}
	result   models.AttendanceResult
	markErr  error
}

func (a *fakeAPI) StatusToday(ctx context.Context) (*models.AttendanceStatus, error) {
	a.mu.Lock()
	a.statusCalls++
	gate := a.statusGate
	a.statusGate = nil
	status, err := a.status, a.statusErr
	a.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (a *fakeAPI) Mark(ctx context.Context, image string, action models.AttendanceAction) (*models.AttendanceResult, error) {
	a.mu.Lock()
	a.marks = append(a.marks, markCall{Image: image, Action: action})
	gate, seen := a.markGate, a.markSeen
	result, err := a.result, a.markErr
	a.mu.Unlock()

	if seen != nil {
		seen <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *fakeAPI) SetStatus(s models.AttendanceStatus) {
	a.mu.Lock()
	a.status = s
	a.statusErr = nil
	a.mu.Unlock()
}

func (a *fakeAPI) StatusCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusCalls
}

func (a *fakeAPI) Marks() []markCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]markCall(nil), a.marks...)
}

type manualTimer struct {
	s       *manualScheduler
	f       func()
	d       time.Duration
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, f: f, d: d}
	s.timers = append(s.timers, t)
	return t
}

// Fire runs every pending timer and returns how many ran.
func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped {
			t.stopped = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

func (s *manualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, t := range s.timers {
		if !t.stopped {
			out = append(out, t.d)
		}
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func int64p(v int64) *int64 { return &v }
