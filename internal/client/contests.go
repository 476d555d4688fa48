package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Contest is a sponsored video contest.
type Contest struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Prize       string    `json:"prize"`
	Status      string    `json:"status"`
	Deadline    time.Time `json:"deadline"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is a creator's entry to a contest.
type Submission struct {
	ID          int64     `json:"id"`
	ContestID   int64     `json:"contest"`
	VideoID     int64     `json:"video"`
	CreatorName string    `json:"creator_name"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ContestListOptions filter the contest listing.
type ContestListOptions struct {
	Status string
	Search string
	Page   int
}

// ContestCreate is the payload for creating or updating a contest.
type ContestCreate struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Prize       string    `json:"prize"`
	Deadline    time.Time `json:"deadline"`
}

// ContestService talks to the /contests endpoints.
type ContestService struct {
	client *Client
}

func (s *ContestService) List(ctx context.Context, opts ContestListOptions) ([]Contest, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}

	var contests []Contest
	if err := s.client.get(ctx, "/contests/", query, &contests); err != nil {
		return nil, err
	}
	return contests, nil
}

func (s *ContestService) Get(ctx context.Context, id int64) (*Contest, error) {
	var contest Contest
	if err := s.client.get(ctx, fmt.Sprintf("/contests/%d/", id), nil, &contest); err != nil {
		return nil, err
	}
	return &contest, nil
}

func (s *ContestService) Create(ctx context.Context, req ContestCreate) (*Contest, error) {
	var contest Contest
	if err := s.client.post(ctx, "/contests/", req, &contest); err != nil {
		return nil, err
	}
	return &contest, nil
}

func (s *ContestService) Update(ctx context.Context, id int64, req ContestCreate) (*Contest, error) {
	var contest Contest
	if err := s.client.patch(ctx, fmt.Sprintf("/contests/%d/", id), req, &contest); err != nil {
		return nil, err
	}
	return &contest, nil
}

func (s *ContestService) Delete(ctx context.Context, id int64) error {
	return s.client.del(ctx, fmt.Sprintf("/contests/%d/", id))
}

func (s *ContestService) Submissions(ctx context.Context, contestID int64) ([]Submission, error) {
	var submissions []Submission
	if err := s.client.get(ctx, fmt.Sprintf("/contests/%d/submissions/", contestID), nil, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}
