package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"attendly_console/attendance"
	"attendly_console/client"
	"attendly_console/logger"
	"attendly_console/middleware"
	"attendly_console/models"
)

// render answers a page request. Protected pages always carry the
// navigation for the current role, including when they fail.
func render(c *gin.Context, status int, body gin.H) {
	if _, ok := c.Get(middleware.UserKey); ok {
		user := middleware.CurrentUser(c)
		body["user"] = user
		body["nav"] = models.NavItems(user.Role)
	}
	c.JSON(status, body)
}

// respondError maps err onto a status code and renders it. extra is merged
// into the body when given.
func respondError(c *gin.Context, err error, extra ...gin.H) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		logger.For("handlers").WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	}

	body := gin.H{"error": msg}
	var verr *models.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["field"] = verr.Field
	}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	render(c, status, body)
}

func classify(err error) (int, string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, attendance.ErrNotAllowed):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, attendance.ErrCaptureInFlight),
		errors.Is(err, attendance.ErrWrongPhase),
		errors.Is(err, attendance.ErrNotCapturing),
		errors.Is(err, attendance.ErrCameraInactive),
		errors.Is(err, attendance.ErrClosed):
		return http.StatusConflict, err.Error()
	}
	if status, ok := client.StatusOf(err); ok {
		return status, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

// bindJSON decodes the body, answering 400 itself on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		render(c, http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

func idParam(c *gin.Context, name, what string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		render(c, http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
		return 0, false
	}
	return id, true
}
