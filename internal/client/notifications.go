package client

import (
	"context"
	"fmt"
	"time"
)

// Notification is a platform event addressed to the current user.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationService talks to the /notifications endpoints.
type NotificationService struct {
	client *Client
}

func (s *NotificationService) List(ctx context.Context) ([]Notification, error) {
	var notifications []Notification
	if err := s.client.get(ctx, "/notifications/", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id int64) error {
	return s.client.post(ctx, fmt.Sprintf("/notifications/%d/mark_as_read/", id), nil, nil)
}
