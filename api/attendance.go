package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"attendly_console/client"
	"attendly_console/logger"
	"attendly_console/models"
)

const invalidResponse = "Invalid response"

type AttendanceAPI struct {
	c     Caller
	saver Saver
	now   func() time.Time
	log   *logrus.Entry
}

func NewAttendanceAPI(c Caller, saver Saver) *AttendanceAPI {
	return &AttendanceAPI{
		c:     c,
		saver: saver,
		now:   time.Now,
		log:   logger.For("attendance-api"),
	}
}

func (a *AttendanceAPI) StatusToday(ctx context.Context) (*models.AttendanceStatus, error) {
	var status models.AttendanceStatus
	err := a.c.Do(ctx, client.Request{
		Path:           "/attendance/status-today",
		Fallback:       "Failed to fetch status",
		DetailFallback: "Failed to fetch status",
	}, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Mark submits one captured frame as a data URL.
func (a *AttendanceAPI) Mark(ctx context.Context, image string, action models.AttendanceAction) (*models.AttendanceResult, error) {
	var result models.AttendanceResult
	err := a.c.Do(ctx, client.Request{
		Method:         http.MethodPost,
		Path:           "/attendance/mark",
		Body:           models.MarkRequest{Image: image, Action: action},
		Fallback:       invalidResponse,
		DetailFallback: "Failed to mark attendance",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *AttendanceAPI) CheckIn(ctx context.Context, image string) (*models.AttendanceResult, error) {
	return a.Mark(ctx, image, models.ActionCheckIn)
}

func (a *AttendanceAPI) CheckOut(ctx context.Context, image string) (*models.AttendanceResult, error) {
	return a.Mark(ctx, image, models.ActionCheckOut)
}

func (a *AttendanceAPI) TodaySummary(ctx context.Context) (*models.AttendanceSummary, error) {
	var summary models.AttendanceSummary
	err := a.c.Do(ctx, client.Request{
		Path:           "/attendance/today-summary",
		Fallback:       invalidResponse,
		DetailFallback: "Failed to load attendance summary",
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (a *AttendanceAPI) History(ctx context.Context, q models.HistoryQuery) (models.AttendanceRecords, error) {
	var records models.AttendanceRecords
	err := a.c.Do(ctx, client.Request{
		Path:           "/attendance/history",
		Query:          q.Values(),
		DetailFallback: "Failed to load attendance history",
	}, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Export fetches records as json, or streams a csv export into the saver.
// Once the backend has answered 2xx, a failing save is logged and the export
// still reports success.
func (a *AttendanceAPI) Export(ctx context.Context, q models.ExportQuery) (*models.ExportResult, error) {
	if q.Format == models.ExportJSON {
		var records models.AttendanceRecords
		err := a.c.Do(ctx, client.Request{
			Path:           "/attendance/export",
			Query:          q.Values(),
			DetailFallback: "Failed to export attendance",
		}, &records)
		if err != nil {
			return nil, err
		}
		return &models.ExportResult{Success: true, Records: records}, nil
	}

	resp, err := a.c.Raw(ctx, client.Request{
		Path:           "/attendance/export",
		Query:          q.Values(),
		Accept:         "text/csv",
		DetailFallback: "Failed to export attendance",
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	filename := exportFilename(resp.Header.Get("Content-Disposition"), a.now())
	result := &models.ExportResult{Success: true, Filename: filename}

	written, err := a.saver.Save(filename, resp.Body)
	if err != nil {
		a.log.WithError(err).WithField("filename", filename).Warn("Saving export failed")
		return result, nil
	}
	result.Size = humanize.Bytes(uint64(written))
	a.log.WithFields(logrus.Fields{"filename": filename, "size": result.Size}).Info("Export saved")
	return result, nil
}

func exportFilename(disposition string, now time.Time) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			return params["filename"]
		}
	}
	return fmt.Sprintf("attendance_%s.csv", now.Format("2006-01-02"))
}

func (a *AttendanceAPI) BulkCreate(ctx context.Context, records []models.BulkRecord) (*models.BulkResult, error) {
	var result models.BulkResult
	err := a.c.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/attendance/bulk",
		Body:   models.BulkCreateRequest{Records: records},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BulkDelete sends ids as repeated record_ids query parameters.
func (a *AttendanceAPI) BulkDelete(ctx context.Context, ids []int) (*models.BulkResult, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("record_ids", strconv.Itoa(id))
	}

	var result models.BulkResult
	err := a.c.Do(ctx, client.Request{
		Method: http.MethodDelete,
		Path:   "/attendance/bulk",
		Query:  q,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *AttendanceAPI) Users(ctx context.Context) (models.Employees, error) {
	var users models.Employees
	err := a.c.Do(ctx, client.Request{
		Path:           "/attendance/users",
		Fallback:       invalidResponse,
		DetailFallback: "Failed to load users",
	}, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (a *AttendanceAPI) RegisterFace(ctx context.Context, req models.RegisterFaceRequest) (*models.RegisterFaceResult, error) {
	var result models.RegisterFaceResult
	err := a.c.Do(ctx, client.Request{
		Method:         http.MethodPost,
		Path:           "/attendance/register",
		Body:           req,
		Fallback:       invalidResponse,
		DetailFallback: "Failed to register face",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
