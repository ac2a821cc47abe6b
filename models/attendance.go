package models

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

type AttendanceAction string

const (
	ActionCheckIn  AttendanceAction = "check_in"
	ActionCheckOut AttendanceAction = "check_out"
)

// AttendanceStatus is the answer to GET /attendance/status-today and the sole
// input for which attendance view renders.
type AttendanceStatus struct {
	Registered     bool       `json:"registered"`
	MarkedToday    bool       `json:"markedToday"`
	CheckedIn      bool       `json:"checkedIn"`
	CheckedOut     bool       `json:"checkedOut"`
	CheckInTime    *Timestamp `json:"checkInTime,omitempty"`
	CheckOutTime   *Timestamp `json:"checkOutTime,omitempty"`
	ElapsedSeconds *int64     `json:"elapsedSeconds,omitempty"`
	Timestamp      *Timestamp `json:"timestamp,omitempty"`
}

func (s *AttendanceStatus) Validate() error {
	if s.CheckedOut && !s.CheckedIn {
		return errors.New("status reports check-out without check-in")
	}
	if s.ElapsedSeconds != nil && *s.ElapsedSeconds < 0 {
		return fmt.Errorf("negative elapsed seconds %d", *s.ElapsedSeconds)
	}
	return nil
}

// PendingToday reports whether the user still owes today's check-in.
func (s AttendanceStatus) PendingToday() bool {
	return s.Registered && !s.MarkedToday
}

// AttendanceResult is the server's answer to a mark submission.
type AttendanceResult struct {
	Message        string     `json:"message"`
	EmployeeID     *int       `json:"employee_id,omitempty"`
	EmployeeName   string     `json:"employee_name,omitempty"`
	Confidence     *float64   `json:"confidence,omitempty"`
	CheckInTime    *Timestamp `json:"checkInTime,omitempty"`
	CheckOutTime   *Timestamp `json:"checkOutTime,omitempty"`
	ElapsedSeconds *int64     `json:"elapsedSeconds,omitempty"`
	Timestamp      *Timestamp `json:"timestamp,omitempty"`
}

func (r *AttendanceResult) Validate() error {
	if r.ElapsedSeconds != nil && *r.ElapsedSeconds < 0 {
		return fmt.Errorf("negative elapsed seconds %d", *r.ElapsedSeconds)
	}
	return nil
}

type MarkRequest struct {
	Image  string           `json:"image"`
	Action AttendanceAction `json:"action"`
}

type RegisterFaceRequest struct {
	UserID    int    `json:"user_id"`
	Image     string `json:"image"`
	AddSample bool   `json:"add_sample,omitempty"`
}

type RegisterFaceResult struct {
	Message    string `json:"message"`
	EmployeeID int    `json:"employee_id,omitempty"`
}

type AttendanceSummaryItem struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	Registered     bool       `json:"registered"`
	MarkedToday    bool       `json:"markedToday"`
	CheckedIn      bool       `json:"checkedIn"`
	CheckedOut     bool       `json:"checkedOut"`
	CheckInTime    *Timestamp `json:"checkInTime,omitempty"`
	CheckOutTime   *Timestamp `json:"checkOutTime,omitempty"`
	ElapsedSeconds *int64     `json:"elapsedSeconds,omitempty"`
}

type AttendanceTotals struct {
	Users      int `json:"users"`
	Registered int `json:"registered"`
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	CheckedOut int `json:"checkedOut"`
}

type AttendanceSummary struct {
	Date   string                  `json:"date"`
	Totals AttendanceTotals        `json:"totals"`
	Items  []AttendanceSummaryItem `json:"items"`
}

func (s *AttendanceSummary) Validate() error {
	if s.Date == "" {
		return errors.New("summary has no date")
	}
	return nil
}

type AttendanceRecord struct {
	ID             int        `json:"id"`
	UserID         int        `json:"user_id"`
	Name           string     `json:"name,omitempty"`
	Date           string     `json:"date"`
	CheckInTime    *Timestamp `json:"checkInTime,omitempty"`
	CheckOutTime   *Timestamp `json:"checkOutTime,omitempty"`
	ElapsedSeconds *int64     `json:"elapsedSeconds,omitempty"`
}

type AttendanceRecords []AttendanceRecord

func (rs AttendanceRecords) Validate() error {
	for i, r := range rs {
		if r.ID <= 0 {
			return fmt.Errorf("record %d has no id", i)
		}
	}
	return nil
}

// HistoryQuery filters GET /attendance/history. Zero fields are omitted.
type HistoryQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	UserID    int    `form:"user_id"`
}

func (q HistoryQuery) Validate() error {
	for field, v := range map[string]string{"start_date": q.StartDate, "end_date": q.EndDate} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DeadlineLayout, v); err != nil {
			return NewValidationError(field, "Dates must be in yyyy-MM-dd format")
		}
	}
	return nil
}

func (q HistoryQuery) Values() url.Values {
	v := url.Values{}
	if q.StartDate != "" {
		v.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("end_date", q.EndDate)
	}
	if q.UserID > 0 {
		v.Set("user_id", strconv.Itoa(q.UserID))
	}
	return v
}

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

type ExportQuery struct {
	StartDate string       `form:"start_date"`
	EndDate   string       `form:"end_date"`
	Format    ExportFormat `form:"format"`
}

func (q *ExportQuery) Validate() error {
	if q.Format == "" {
		q.Format = ExportCSV
	}
	if q.Format != ExportCSV && q.Format != ExportJSON {
		return NewValidationError("format", "Format must be csv or json")
	}
	return HistoryQuery{StartDate: q.StartDate, EndDate: q.EndDate}.Validate()
}

func (q ExportQuery) Values() url.Values {
	v := HistoryQuery{StartDate: q.StartDate, EndDate: q.EndDate}.Values()
	v.Set("format", string(q.Format))
	return v
}

// ExportResult is returned for both export shapes: Records for json, and a
// success marker with the saved file name for csv.
type ExportResult struct {
	Success  bool               `json:"success"`
	Filename string             `json:"filename,omitempty"`
	Size     string             `json:"size,omitempty"`
	Records  []AttendanceRecord `json:"records,omitempty"`
}

type BulkRecord struct {
	UserID       int    `json:"user_id"`
	Date         string `json:"date"`
	CheckInTime  string `json:"checkInTime,omitempty"`
	CheckOutTime string `json:"checkOutTime,omitempty"`
}

type BulkCreateRequest struct {
	Records []BulkRecord `json:"records"`
}

func (r BulkCreateRequest) Validate() error {
	if len(r.Records) == 0 {
		return NewValidationError("records", "At least one record is required")
	}
	for _, rec := range r.Records {
		if rec.UserID <= 0 || rec.Date == "" {
			return NewValidationError("records", "Each record needs a user and a date")
		}
	}
	return nil
}

type BulkDeleteRequest struct {
	RecordIDs []int `json:"record_ids"`
}

func (r BulkDeleteRequest) Validate() error {
	if len(r.RecordIDs) == 0 {
		return NewValidationError("record_ids", "Select at least one record")
	}
	return nil
}

type BulkResult struct {
	Message string `json:"message"`
	Created int    `json:"created,omitempty"`
	Deleted int    `json:"deleted,omitempty"`
}
