package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendly_console/api"
	"attendly_console/logger"
	"attendly_console/models"
)

type EmployeeHandler struct {
	users *api.AuthAPI
	log   *logrus.Entry
}

func NewEmployeeHandler(users *api.AuthAPI) *EmployeeHandler {
	return &EmployeeHandler{users: users, log: logger.For("employees")}
}

func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	employees, err := h.users.Users(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("Failed to load employees")
		respondError(c, err, gin.H{"error": "Failed to load employees"})
		return
	}
	render(c, http.StatusOK, gin.H{
		"employees": employees,
		"total":     len(employees),
	})
}

func (h *EmployeeHandler) AddEmployee(c *gin.Context) {
	var req models.AddEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.users.AddEmployee(c.Request.Context(), req)
	if err != nil {
		h.log.WithError(err).Warn("Failed to add employee")
		// Backend validation messages (duplicate email) are worth showing.
		if status, _ := classify(err); status >= 400 && status < 500 {
			respondError(c, err)
			return
		}
		respondError(c, err, gin.H{"error": "Failed to add employee"})
		return
	}

	msg := resp.Message
	if msg == "" {
		msg = "Employee added"
	}
	render(c, http.StatusCreated, gin.H{"message": msg, "employee": resp.User})
}
