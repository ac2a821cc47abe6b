package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendly_console/api"
	"attendly_console/logger"
	"attendly_console/models"
)

// RecordsHandler serves the admin attendance records pages.
type RecordsHandler struct {
	api *api.AttendanceAPI
	log *logrus.Entry
}

func NewRecordsHandler(a *api.AttendanceAPI) *RecordsHandler {
	return &RecordsHandler{api: a, log: logger.For("records")}
}

func (h *RecordsHandler) Summary(c *gin.Context) {
	summary, err := h.api.TodaySummary(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("Failed to load attendance")
		respondError(c, err, gin.H{"error": "Failed to load attendance"})
		return
	}
	render(c, http.StatusOK, gin.H{"summary": summary})
}

func (h *RecordsHandler) History(c *gin.Context) {
	var q models.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		render(c, http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	if err := q.Validate(); err != nil {
		respondError(c, err)
		return
	}

	records, err := h.api.History(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
		"query":   q,
	})
}

func (h *RecordsHandler) Export(c *gin.Context) {
	var q models.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		render(c, http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	if err := q.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.api.Export(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"export": result})
}

func (h *RecordsHandler) BulkCreate(c *gin.Context) {
	var req models.BulkCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.api.BulkCreate(c.Request.Context(), req.Records)
	if err != nil {
		respondError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"result": result})
}

func (h *RecordsHandler) BulkDelete(c *gin.Context) {
	var req models.BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.api.BulkDelete(c.Request.Context(), req.RecordIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"result": result})
}
