package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/ocontest/ocontest-cli/internal/client"
)

type NotificationsCmd struct {
	List  NotificationsListCmd  `cmd:"" help:"List notifications"`
	Read  NotificationsReadCmd  `cmd:"" help:"Mark a notification as read"`
	Watch NotificationsWatchCmd `cmd:"" help:"Poll for new notifications"`
}

type NotificationsListCmd struct {
	Unread bool `help:"Only show unread notifications"`
}

func (l *NotificationsListCmd) Run(ctx context.Context, globals *Globals) error {
	manager, api, err := globals.newSession()
	if err != nil {
		return err
	}

	if err := requireRole(manager, "notifications list"); err != nil {
		return err
	}

	notifications, err := api.Notifications.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notifications: %w", err)
	}

	shown := 0
	for _, n := range notifications {
		if l.Unread && n.Read {
			continue
		}
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s %-6d %-20s %s\n", marker, n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Message)
		shown++
	}

	if shown == 0 {
		fmt.Println("No notifications.")
	}
	return nil
}

type NotificationsReadCmd struct {
	ID int64 `arg:"" help:"Notification ID"`
}

func (r *NotificationsReadCmd) Run(ctx context.Context, globals *Globals) error {
	manager, api, err := globals.newSession()
	if err != nil {
		return err
	}

	if err := requireRole(manager, "notifications read"); err != nil {
		return err
	}

	if err := api.Notifications.MarkAsRead(ctx, r.ID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	fmt.Printf("Marked notification %d as read\n", r.ID)
	return nil
}

type NotificationsWatchCmd struct {
	Interval time.Duration `help:"Poll interval" default:"30s"`
}

func (w *NotificationsWatchCmd) Run(ctx context.Context, globals *Globals) error {
	manager, api, err := globals.newSession()
	if err != nil {
		return err
	}

	if err := requireRole(manager, "notifications watch"); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("Received interrupt signal, shutting down...")
		cancel()
	}()

	fmt.Println("Watching notifications (press Ctrl+C to stop)...")

	return w.watch(ctx, api)
}

// watch polls the notification list, printing anything new. Transient
// failures stretch the wait with exponential backoff; a successful poll
// resets it to the configured interval.
func (w *NotificationsWatchCmd) watch(ctx context.Context, api *client.Client) error {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = w.Interval
	retry.MaxInterval = 10 * w.Interval

	var lastSeen int64

	for {
		wait := w.Interval

		notifications, err := api.Notifications.List(ctx)
		switch {
		case err == nil:
			retry.Reset()
			for _, n := range notifications {
				if n.ID <= lastSeen {
					continue
				}
				lastSeen = n.ID
				fmt.Printf("[%s] %s\n", n.CreatedAt.Format("15:04:05"), n.Message)
			}
		case client.IsNetworkError(err):
			wait = retry.NextBackOff()
			log.Warn().Err(err).Dur("retry_in", wait).Msg("notification poll failed")
		default:
			return fmt.Errorf("notification poll rejected: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}
