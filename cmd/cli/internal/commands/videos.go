package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ocontest/ocontest-cli/internal/client"
	"github.com/ocontest/ocontest-cli/internal/session"
)

type VideosCmd struct {
	List   VideosListCmd   `cmd:"" help:"List videos"`
	Upload VideosUploadCmd `cmd:"" help:"Upload a video (creator accounts)"`
	Delete VideosDeleteCmd `cmd:"" help:"Delete a video (creator accounts)"`
}

type VideosListCmd struct {
	Contest int64 `help:"Filter by contest ID"`
	Page    int   `help:"Page number" default:"1"`
}

func (l *VideosListCmd) Run(ctx context.Context, globals *Globals) error {
	_, api, err := globals.newSession()
	if err != nil {
		return err
	}

	videos, err := api.Videos.List(ctx, client.VideoListOptions{
		ContestID: l.Contest,
		Page:      l.Page,
	})
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	if len(videos) == 0 {
		fmt.Println("No videos found.")
		return nil
	}

	fmt.Printf("%-6s %-30s %-8s %-10s %-20s\n", "ID", "Title", "Contest", "Status", "Uploaded")
	fmt.Println(strings.Repeat("─", 78))
	for _, v := range videos {
		fmt.Printf("%-6d %-30s %-8d %-10s %-20s\n",
			v.ID,
			truncate(v.Title, 30),
			v.ContestID,
			v.Status,
			v.UploadedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

type VideosUploadCmd struct {
	File        string `arg:"" help:"Path to the video file" type:"existingfile"`
	Title       string `help:"Video title" required:""`
	Description string `help:"Video description"`
	Contest     int64  `help:"Contest to submit to"`
}

func (u *VideosUploadCmd) Run(ctx context.Context, globals *Globals) error {
	manager, api, err := globals.newSession()
	if err != nil {
		return err
	}

	if err := requireRole(manager, "videos upload", client.RoleCreator); err != nil {
		return err
	}

	// Multipart bodies are streamed and cannot be replayed after a 401,
	// so refresh an already-expired token up front.
	if session.IsExpired(manager.AccessToken()) {
		if _, err := manager.Refresh(ctx); err != nil {
			return fmt.Errorf("session expired, log in again: %w", err)
		}
	}

	f, err := os.Open(u.File)
	if err != nil {
		return fmt.Errorf("failed to open video file: %w", err)
	}
	defer f.Close()

	video, err := api.Videos.Upload(ctx, client.VideoUpload{
		Title:       u.Title,
		Description: u.Description,
		ContestID:   u.Contest,
		Filename:    filepath.Base(u.File),
		File:        f,
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Uploaded video %d: %s\n", video.ID, video.Title)
	return nil
}

type VideosDeleteCmd struct {
	ID int64 `arg:"" help:"Video ID"`
}

func (d *VideosDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	manager, api, err := globals.newSession()
	if err != nil {
		return err
	}

	if err := requireRole(manager, "videos delete", client.RoleCreator); err != nil {
		return err
	}

	if err := api.Videos.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	fmt.Printf("Deleted video %d\n", d.ID)
	return nil
}
