package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ocontest/ocontest-cli/internal/client"
)

type ContestsCmd struct {
	List        ContestsListCmd        `cmd:"" help:"List contests"`
	Show        ContestsShowCmd        `cmd:"" help:"Show a contest"`
	Create      ContestsCreateCmd      `cmd:"" help:"Create a contest (brand accounts)"`
	Delete      ContestsDeleteCmd      `cmd:"" help:"Delete a contest (brand accounts)"`
	Submissions ContestsSubmissionsCmd `cmd:"" help:"List submissions to a contest (brand accounts)"`
}

type ContestsListCmd struct {
	Status string `help:"Filter by status (open, closed, judging)"`
	Search string `help:"Search term"`
	Page   int    `help:"Page number" default:"1"`
}

func (l *ContestsListCmd) Run(ctx context.Context, globals *Globals) error {
	_, api, err := globals.newSession()
	if err != nil {
		return err
	}

	contests, err := api.Contests.List(ctx, client.ContestListOptions{
		Status: l.Status,
		Search: l.Search,
		Page:   l.Page,
	})
	if err != nil {
		return fmt.Errorf("failed to list contests: %w", err)
	}

	if len(contests) == 0 {
		fmt.Println("No contests found.")
		return nil
	}

	fmt.Printf("%-6s %-30s %-20s %-10s %-12s\n", "ID", "Title", "Brand", "Status", "Deadline")
	fmt.Println(strings.Repeat("─", 84))
	for _, c := range contests {
		fmt.Printf("%-6d %-30s %-20s %-10s %-12s\n",
			c.ID,
			truncate(c.Title, 30),
			truncate(c.Brand, 20),
			c.Status,
			c.Deadline.Format("2006-01-02"))
	}
	return nil
}

type ContestsShowCmd struct {
	ID int64 `arg:"" help:"Contest ID"`
}

func (s *ContestsShowCmd) Run(ctx context.Context, globals *Globals) error {
	_, api, err := globals.newSession()
	if err != nil {
		return err
	}

	contest, err := api.Contests.Get(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch contest: %w", err)
	}

	fmt.Printf("Title:    %s\n", contest.Title)
	fmt.Printf("Brand:    %s\n", contest.Brand)
	fmt.Printf("Status:   %s\n", contest.Status)
	fmt.Printf("Prize:    %s\n", contest.Prize)
	fmt.Printf("Deadline: %s\n", contest.Deadline.Format("2006-01-02 15:04"))
	fmt.Println()
	fmt.Println(contest.Description)
	return nil
}

type ContestsCreateCmd struct {
	Title       string        `arg:"" help:"Contest title"`
	Description string        `help:"Contest brief" required:""`
	Prize       string        `help:"Prize description" required:""`
	Duration    time.Duration `help:"Time until the submission deadline" default:"720h"`
}

func (c *ContestsCreateCmd) Run(ctx context.Context, globals *Globals) error {
	manager, api, err := globals.newSession()
	if err != nil {
		return err
	}

	if err := requireRole(manager, "contests create", client.RoleBrand); err != nil {
		return err
	}

	contest, err := api.Contests.Create(ctx, client.ContestCreate{
		Title:       c.Title,
		Description: c.Description,
		Prize:       c.Prize,
		Deadline:    time.Now().Add(c.Duration).UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to create contest: %w", err)
	}

	fmt.Printf("Created contest %d: %s\n", contest.ID, contest.Title)
	return nil
}

type ContestsDeleteCmd struct {
	ID int64 `arg:"" help:"Contest ID"`
}

func (d *ContestsDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	manager, api, err := globals.newSession()
	if err != nil {
		return err
	}

	if err := requireRole(manager, "contests delete", client.RoleBrand); err != nil {
		return err
	}

	if err := api.Contests.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}

	fmt.Printf("Deleted contest %d\n", d.ID)
	return nil
}

type ContestsSubmissionsCmd struct {
	ID int64 `arg:"" help:"Contest ID"`
}

func (s *ContestsSubmissionsCmd) Run(ctx context.Context, globals *Globals) error {
	manager, api, err := globals.newSession()
	if err != nil {
		return err
	}

	if err := requireRole(manager, "contests submissions", client.RoleBrand); err != nil {
		return err
	}

	submissions, err := api.Contests.Submissions(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	if len(submissions) == 0 {
		fmt.Println("No submissions yet.")
		return nil
	}

	fmt.Printf("%-6s %-8s %-20s %-10s %-20s\n", "ID", "Video", "Creator", "Status", "Submitted")
	fmt.Println(strings.Repeat("─", 70))
	for _, sub := range submissions {
		fmt.Printf("%-6d %-8d %-20s %-10s %-20s\n",
			sub.ID,
			sub.VideoID,
			truncate(sub.CreatorName, 20),
			sub.Status,
			sub.SubmittedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
