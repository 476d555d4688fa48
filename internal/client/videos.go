package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Video is an uploaded contest entry or library video.
type Video struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Thumbnail   string    `json:"thumbnail"`
	ContestID   int64     `json:"contest"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// VideoListOptions filter the video listing.
type VideoListOptions struct {
	ContestID int64
	Page      int
}

// VideoUpload is a multipart upload request. File is streamed, so the
// upload is not replayed on a 401; callers refresh first if needed.
type VideoUpload struct {
	Title       string
	Description string
	ContestID   int64
	Filename    string
	File        io.Reader
}

// VideoService talks to the /videos endpoints.
type VideoService struct {
	client *Client
}

func (s *VideoService) List(ctx context.Context, opts VideoListOptions) ([]Video, error) {
	query := url.Values{}
	if opts.ContestID > 0 {
		query.Set("contest", strconv.FormatInt(opts.ContestID, 10))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}

	var videos []Video
	if err := s.client.get(ctx, "/videos/", query, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *VideoService) Get(ctx context.Context, id int64) (*Video, error) {
	var video Video
	if err := s.client.get(ctx, fmt.Sprintf("/videos/%d/", id), nil, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func (s *VideoService) Upload(ctx context.Context, req VideoUpload) (*Video, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(mw, req)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.baseURL.String()+"/videos/upload/", pr)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	var video Video
	if err := s.client.do(httpReq, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func writeUploadForm(mw *multipart.Writer, req VideoUpload) error {
	if err := mw.WriteField("title", req.Title); err != nil {
		return err
	}
	if err := mw.WriteField("description", req.Description); err != nil {
		return err
	}
	if req.ContestID > 0 {
		if err := mw.WriteField("contest", strconv.FormatInt(req.ContestID, 10)); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", req.Filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, req.File)
	return err
}

func (s *VideoService) Update(ctx context.Context, id int64, fields map[string]any) (*Video, error) {
	var video Video
	if err := s.client.patch(ctx, fmt.Sprintf("/videos/%d/", id), fields, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func (s *VideoService) Delete(ctx context.Context, id int64) error {
	return s.client.del(ctx, fmt.Sprintf("/videos/%d/", id))
}
