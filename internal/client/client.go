// Package client submits attempts to the ranking service and reads its leaderboard.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/typerank/internal/model"
)

const defaultTimeout = 15 * time.Second

// ErrNotConfigured is returned before any network call when no server URL is set.
var ErrNotConfigured = errors.New("ranking server is not configured (set [ranking] server-url or --server)")

// RemoteError is a non-2xx reply from the ranking service.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ranking server returned %d", e.Status)
	}
	return e.Message
}

// Rejected reports whether the server refused the submission itself, as
// opposed to failing to store it.
func (e *RemoteError) Rejected() bool {
	return e.Status >= 400 && e.Status < 500
}

// Client talks to one ranking service.
type Client struct {
	base *url.URL
	http *http.Client
}

// New validates baseURL. An empty baseURL yields ErrNotConfigured.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ranking server url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// Submit posts a raw attempt for validation. Retrying after a timeout may
// record the attempt twice.
func (c *Client) Submit(ctx context.Context, sub model.Submission) (model.SubmitResult, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return model.SubmitResult{}, fmt.Errorf("failed to encode submission: %w", err)
	}
	var res model.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/scores", bytes.NewReader(body), &res); err != nil {
		return model.SubmitResult{}, err
	}
	return res, nil
}

// LeaderboardEntry mirrors the server's leaderboard row.
type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	Username     string    `json:"username"`
	Score        int       `json:"score"`
	CPM          int       `json:"cpm"`
	Accuracy     float64   `json:"accuracy"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

// Leaderboard fetches up to limit entries by descending score.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	path := "/api/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, path, http.NoBody, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("failed to build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		if derr := json.NewDecoder(resp.Body).Decode(&payload); derr != nil {
			// Body is not the JSON error shape; report the status only.
			_ = derr
		}
		return &RemoteError{Status: resp.StatusCode, Message: payload.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SubmissionFor converts a finished attempt into the wire shape.
func SubmissionFor(a model.Attempt, username string, submittedAt time.Time) model.Submission {
	return model.Submission{
		Input:       a.Input,
		TargetText:  a.TargetText,
		StartTime:   a.StartedAt.UnixMilli(),
		EndTime:     a.EndedAt.UnixMilli(),
		Username:    username,
		SubmittedAt: submittedAt.UnixMilli(),
	}
}
