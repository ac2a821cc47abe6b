package api

import (
	"context"
	"fmt"
	"net/http"

	"attendly_console/client"
	"attendly_console/models"
)

type NotificationsAPI struct {
	c Caller
}

func NewNotificationsAPI(c Caller) *NotificationsAPI {
	return &NotificationsAPI{c: c}
}

func (n *NotificationsAPI) All(ctx context.Context) ([]models.Notification, error) {
	var items []models.Notification
	if err := n.c.Do(ctx, client.Request{Path: "/notifications/"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (n *NotificationsAPI) UnreadCount(ctx context.Context) (int, error) {
	var resp models.UnreadCount
	if err := n.c.Do(ctx, client.Request{Path: "/notifications/unread-count"}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (n *NotificationsAPI) MarkRead(ctx context.Context, id int) error {
	return n.c.Do(ctx, client.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/notifications/%d/read", id),
	}, nil)
}

func (n *NotificationsAPI) MarkAllRead(ctx context.Context) error {
	return n.c.Do(ctx, client.Request{
		Method: http.MethodPut,
		Path:   "/notifications/mark-all-read",
	}, nil)
}

func (n *NotificationsAPI) Delete(ctx context.Context, id int) error {
	return n.c.Do(ctx, client.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/notifications/%d", id),
	}, nil)
}

func (n *NotificationsAPI) Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error) {
	var created models.Notification
	err := n.c.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/notifications/",
		Body:   req,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}
