package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendly_console/api"
	"attendly_console/logger"
	"attendly_console/middleware"
)

type DashboardHandler struct {
	tasks      *api.TasksAPI
	attendance *api.AttendanceAPI
	log        *logrus.Entry
}

func NewDashboardHandler(tasks *api.TasksAPI, attendance *api.AttendanceAPI) *DashboardHandler {
	return &DashboardHandler{
		tasks:      tasks,
		attendance: attendance,
		log:        logger.For("dashboard"),
	}
}

// panel is one independently loaded section of a page.
type panel struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Dashboard loads the task stats and, for admins and managers, today's
// attendance summary. A failing panel does not take the other one down.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	body := gin.H{}

	stats, err := h.tasks.Stats(ctx)
	if err != nil {
		h.log.WithError(err).Warn("Failed to load stats")
		body["stats"] = panel{Error: "Failed to load stats"}
	} else {
		body["stats"] = panel{Data: stats}
	}

	if user.CanManageAttendance() {
		summary, err := h.attendance.TodaySummary(ctx)
		if err != nil {
			h.log.WithError(err).Warn("Failed to load attendance")
			body["attendance"] = panel{Error: "Failed to load attendance"}
		} else {
			body["attendance"] = panel{Data: summary}
		}
	}

	if status, ok := c.Get(middleware.StatusKey); ok {
		body["my_attendance"] = status
	}

	render(c, http.StatusOK, body)
}
