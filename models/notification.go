package models

import "strings"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
)

type Notification struct {
	ID        int              `json:"id"`
	UserID    int              `json:"user_id,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt *Timestamp       `json:"created_at,omitempty"`
}

type UnreadCount struct {
	Count int `json:"count"`
}

type CreateNotificationRequest struct {
	UserID  int              `json:"user_id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type,omitempty"`
}

func (r *CreateNotificationRequest) Validate() error {
	if r.UserID <= 0 {
		return NewValidationError("user_id", "Recipient is required")
	}
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Message) == "" {
		return NewValidationError("", "Title and message are required")
	}
	if r.Type == "" {
		r.Type = NotificationInfo
	}
	return nil
}
