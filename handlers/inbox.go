package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendly_console/api"
	"attendly_console/logger"
	"attendly_console/models"
)

type InboxHandler struct {
	notifications *api.NotificationsAPI
	now           func() time.Time
	log           *logrus.Entry
}

func NewInboxHandler(notifications *api.NotificationsAPI) *InboxHandler {
	return &InboxHandler{
		notifications: notifications,
		now:           time.Now,
		log:           logger.For("inbox"),
	}
}

type notificationView struct {
	models.Notification
	Age string `json:"age,omitempty"`
}

func (h *InboxHandler) Inbox(c *gin.Context) {
	h.renderInbox(c)
}

func (h *InboxHandler) renderInbox(c *gin.Context) {
	items, err := h.notifications.All(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("Failed to load notifications")
		respondError(c, err, gin.H{"error": "Failed to load notifications"})
		return
	}

	now := h.now()
	views := make([]notificationView, 0, len(items))
	unread := 0
	for _, n := range items {
		v := notificationView{Notification: n}
		if n.CreatedAt != nil {
			v.Age = humanize.RelTime(n.CreatedAt.Time, now, "ago", "from now")
		}
		if !n.Read {
			unread++
		}
		views = append(views, v)
	}

	render(c, http.StatusOK, gin.H{
		"notifications": views,
		"unread":        unread,
	})
}

// mutate runs a change and re-renders the inbox. Failures are logged only;
// the refreshed list shows the real state.
func (h *InboxHandler) mutate(c *gin.Context, what string, fn func(ctx context.Context) error) {
	if err := fn(c.Request.Context()); err != nil {
		h.log.WithError(err).WithField("action", what).Warn("Notification update failed")
	}
	h.renderInbox(c)
}

func (h *InboxHandler) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id", "notification")
	if !ok {
		return
	}
	h.mutate(c, "mark_read", func(ctx context.Context) error {
		return h.notifications.MarkRead(ctx, id)
	})
}

func (h *InboxHandler) MarkAllRead(c *gin.Context) {
	h.mutate(c, "mark_all_read", h.notifications.MarkAllRead)
}

func (h *InboxHandler) DeleteNotification(c *gin.Context) {
	id, ok := idParam(c, "id", "notification")
	if !ok {
		return
	}
	h.mutate(c, "delete", func(ctx context.Context) error {
		return h.notifications.Delete(ctx, id)
	})
}

func (h *InboxHandler) CreateNotification(c *gin.Context) {
	var req models.CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	created, err := h.notifications.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	render(c, http.StatusCreated, gin.H{"message": "Notification sent", "notification": created})
}
