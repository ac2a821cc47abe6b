package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendly_console/api"
	"attendly_console/attendance"
	"attendly_console/camera"
	"attendly_console/logger"
	"attendly_console/middleware"
)

// AttendanceHandler owns the mounted capture and registration views. The
// console has a single operator, so there is at most one of each.
type AttendanceHandler struct {
	api    *api.AttendanceAPI
	device camera.Device
	opts   attendance.Options
	log    *logrus.Entry

	mu       sync.Mutex
	flow     *attendance.Flow
	register *attendance.RegisterFlow
}

func NewAttendanceHandler(a *api.AttendanceAPI, device camera.Device, opts attendance.Options) *AttendanceHandler {
	return &AttendanceHandler{
		api:    a,
		device: device,
		opts:   opts,
		log:    logger.For("attendance"),
	}
}

// ReleaseOnNavigate unmounts whichever view the requested page leaves.
func (h *AttendanceHandler) ReleaseOnNavigate() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := middleware.PageOf(c.Request.URL.Path)

		h.mu.Lock()
		var closing []interface{ Close() }
		if page != middleware.PageAttendance && h.flow != nil {
			closing = append(closing, h.flow)
			h.flow = nil
		}
		if page != middleware.PageRegisterFace && h.register != nil {
			closing = append(closing, h.register)
			h.register = nil
		}
		h.mu.Unlock()

		for _, v := range closing {
			v.Close()
		}
		if len(closing) > 0 {
			h.log.WithField("page", page).Debug("Released capture views")
		}
		c.Next()
	}
}

// CloseAll unmounts both views.
func (h *AttendanceHandler) CloseAll() {
	h.mu.Lock()
	flow, register := h.flow, h.register
	h.flow, h.register = nil, nil
	h.mu.Unlock()

	if flow != nil {
		flow.Close()
	}
	if register != nil {
		register.Close()
	}
}

func (h *AttendanceHandler) currentFlow(c *gin.Context) (*attendance.Flow, bool) {
	h.mu.Lock()
	flow := h.flow
	h.mu.Unlock()
	if flow == nil {
		render(c, http.StatusConflict, gin.H{"error": "Open the attendance page first"})
		return nil, false
	}
	return flow, true
}

// Attendance mounts the capture view on first visit and refreshes it on
// later ones.
func (h *AttendanceHandler) Attendance(c *gin.Context) {
	ctx := c.Request.Context()

	h.mu.Lock()
	flow := h.flow
	mounted := flow == nil
	if mounted {
		flow = attendance.NewFlow(h.api, h.device, h.opts)
		h.flow = flow
	}
	h.mu.Unlock()

	if mounted {
		render(c, http.StatusOK, gin.H{"view": flow.Load(ctx)})
		return
	}

	// A failed fetch is part of the view (status_error); only a flow
	// closed underneath this request is an error.
	if err := flow.Refresh(ctx); errors.Is(err, attendance.ErrClosed) {
		respondError(c, err)
		return
	} else if err != nil {
		h.log.WithError(err).Warn("Attendance status unavailable")
	}
	render(c, http.StatusOK, gin.H{"view": flow.View()})
}

func (h *AttendanceHandler) StartCheckout(c *gin.Context) {
	flow, ok := h.currentFlow(c)
	if !ok {
		return
	}
	view, err := flow.StartCheckout()
	h.respondView(c, view, err)
}

func (h *AttendanceHandler) CancelCheckout(c *gin.Context) {
	flow, ok := h.currentFlow(c)
	if !ok {
		return
	}
	view, err := flow.CancelCheckout()
	h.respondView(c, view, err)
}

func (h *AttendanceHandler) RetryCamera(c *gin.Context) {
	flow, ok := h.currentFlow(c)
	if !ok {
		return
	}
	view, err := flow.RetryCamera()
	h.respondView(c, view, err)
}

// Capture takes a frame and marks attendance with it. The request blocks
// until the backend answers; a second capture meanwhile gets 409.
func (h *AttendanceHandler) Capture(c *gin.Context) {
	flow, ok := h.currentFlow(c)
	if !ok {
		return
	}

	result, err := flow.Capture()
	if err != nil {
		respondError(c, err, gin.H{"view": flow.View()})
		return
	}
	render(c, http.StatusOK, gin.H{
		"result": result,
		"view":   flow.View(),
	})
}

// Leave unmounts the capture view without navigating elsewhere.
func (h *AttendanceHandler) Leave(c *gin.Context) {
	h.mu.Lock()
	flow := h.flow
	h.flow = nil
	h.mu.Unlock()

	if flow != nil {
		flow.Close()
	}
	render(c, http.StatusOK, gin.H{"message": "Attendance view closed"})
}

func (h *AttendanceHandler) respondView(c *gin.Context, view any, err error) {
	if err != nil {
		respondError(c, err, gin.H{"view": view})
		return
	}
	render(c, http.StatusOK, gin.H{"view": view})
}

func (h *AttendanceHandler) currentRegister(c *gin.Context) (*attendance.RegisterFlow, bool) {
	h.mu.Lock()
	r := h.register
	h.mu.Unlock()
	if r == nil {
		render(c, http.StatusConflict, gin.H{"error": "Open the face registration page first"})
		return nil, false
	}
	return r, true
}

func (h *AttendanceHandler) RegisterFace(c *gin.Context) {
	h.mu.Lock()
	r := h.register
	mounted := r == nil
	if mounted {
		r = attendance.NewRegisterFlow(h.api, h.device, middleware.CurrentUser(c), h.opts)
		h.register = r
	}
	h.mu.Unlock()

	var view attendance.RegisterView
	if mounted {
		view = r.Mount(c.Request.Context())
	} else {
		view = r.View()
	}
	render(c, http.StatusOK, gin.H{"view": view})
}

type targetForm struct {
	UserID    int   `json:"user_id"`
	AddSample *bool `json:"add_sample"`
}

func (h *AttendanceHandler) SelectTarget(c *gin.Context) {
	r, ok := h.currentRegister(c)
	if !ok {
		return
	}
	var form targetForm
	if !bindJSON(c, &form) {
		return
	}

	view := r.View()
	if form.UserID > 0 {
		var err error
		if view, err = r.Select(form.UserID); err != nil {
			respondError(c, err, gin.H{"view": view})
			return
		}
	}
	if form.AddSample != nil {
		view = r.SetAddSample(*form.AddSample)
	}
	render(c, http.StatusOK, gin.H{"view": view})
}

func (h *AttendanceHandler) RegisterCapture(c *gin.Context) {
	r, ok := h.currentRegister(c)
	if !ok {
		return
	}

	result, err := r.Capture()
	if err != nil {
		respondError(c, err, gin.H{"view": r.View()})
		return
	}
	render(c, http.StatusOK, gin.H{
		"result": result,
		"view":   r.View(),
	})
}

func (h *AttendanceHandler) RegisterRetryCamera(c *gin.Context) {
	r, ok := h.currentRegister(c)
	if !ok {
		return
	}
	view, err := r.RetryCamera()
	h.respondView(c, view, err)
}
