package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/store"
)

const maxRetries = 3

// ErrBadRequest is returned when the server rejects a request as invalid.
var ErrBadRequest = errors.New("bad request")

// APIError is a non-2xx reply. It unwraps to the store sentinel matching its
// status, so callers can use errors.Is the same way as with a local store.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return store.ErrNotFound
	case http.StatusConflict:
		return store.ErrDuplicateCode
	case http.StatusBadRequest:
		return ErrBadRequest
	}
	return nil
}

// Client talks to a timecard server and implements store.Repository.
type Client struct {
	baseURL    string
	httpClient *http.Client
	projects   *expiring[[]model.Project]
	logger     *slog.Logger
	backoff    func(attempt int) time.Duration
}

var _ store.Repository = (*Client)(nil)

func New(baseURL string, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		projects: newExpiring[[]model.Project](cacheTTL),
		logger:   logger,
		backoff:  backoff,
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	c.logger.Debug("API request", "method", method, "path", path)

	var resp *http.Response
	requestStart := time.Now()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries || ctx.Err() != nil {
				c.logger.Error("API request transport error", "method", method, "path", path, "error", err, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("sending request: %w", err)
			}
			c.logger.Debug("API request transport error, retrying", "method", method, "path", path, "attempt", attempt+1, "error", err)
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				c.logger.Error("API request failed after retries", "method", method, "path", path, "status", resp.StatusCode, "attempts", maxRetries+1, "elapsed", time.Since(requestStart))
				return nil, &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("giving up after %d retries", maxRetries)}
			}
			c.logger.Debug("API request retryable error", "method", method, "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("API response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := truncate(string(respBody), 200)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		c.logger.Debug("API request failed", "method", method, "path", path, "status", resp.StatusCode, "response", msg)
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	return respBody, nil
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.backoff(attempt)):
		return nil
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.doRequest(ctx, http.MethodGet, "/healthz", nil); err != nil {
		return fmt.Errorf("checking server health: %w", err)
	}
	return nil
}

// Close drops idle keep-alive connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) CreateEntry(ctx context.Context, e *model.Entry) (int64, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/entry", e)
	if err != nil {
		return 0, fmt.Errorf("creating entry: %w", err)
	}
	var created model.Entry
	if err := json.Unmarshal(data, &created); err != nil {
		return 0, fmt.Errorf("parsing entry response: %w", err)
	}
	if created.ID == nil {
		return 0, errors.New("creating entry: server returned no id")
	}
	*e = created
	return *created.ID, nil
}

func (c *Client) Entry(ctx context.Context, id int64) (*model.Entry, error) {
	var e model.Entry
	if err := c.getJSON(ctx, fmt.Sprintf("/entry/%d", id), &e); err != nil {
		return nil, fmt.Errorf("getting entry %d: %w", id, err)
	}
	return &e, nil
}

func (c *Client) LastEntry(ctx context.Context) (*model.Entry, error) {
	var e model.Entry
	if err := c.getJSON(ctx, "/last_entry", &e); err != nil {
		return nil, fmt.Errorf("getting last entry: %w", err)
	}
	return &e, nil
}

func (c *Client) EntriesBetween(ctx context.Context, start, end string) ([]model.Entry, error) {
	path := "/entries_between/" + url.PathEscape(start) + "/" + url.PathEscape(end)
	entries := []model.Entry{}
	if err := c.getJSON(ctx, path, &entries); err != nil {
		return nil, fmt.Errorf("getting entries: %w", err)
	}
	return entries, nil
}

func (c *Client) UpdateEntry(ctx context.Context, e model.Entry) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/update_entry", e); err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	return nil
}

func (c *Client) DeleteEntry(ctx context.Context, id int64) error {
	if _, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/delete_entry/%d", id), nil); err != nil {
		return fmt.Errorf("deleting entry %d: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteLastEntry(ctx context.Context) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/delete_last_entry", nil); err != nil {
		return fmt.Errorf("deleting last entry: %w", err)
	}
	return nil
}

func (c *Client) CreateProject(ctx context.Context, p *model.Project) (int64, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/project", p)
	if err != nil {
		return 0, fmt.Errorf("creating project: %w", err)
	}
	c.projects.Drop()

	var created model.Project
	if err := json.Unmarshal(data, &created); err != nil {
		return 0, fmt.Errorf("parsing project response: %w", err)
	}
	if created.ID == nil {
		return 0, errors.New("creating project: server returned no id")
	}
	*p = created
	return *created.ID, nil
}

func (c *Client) Project(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	if err := c.getJSON(ctx, fmt.Sprintf("/project/%d", id), &p); err != nil {
		return nil, fmt.Errorf("getting project %d: %w", id, err)
	}
	return &p, nil
}

func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	if cached, ok := c.projects.Load(); ok {
		return slices.Clone(cached), nil
	}

	projects := []model.Project{}
	if err := c.getJSON(ctx, "/all_projects", &projects); err != nil {
		return nil, fmt.Errorf("getting projects: %w", err)
	}

	c.projects.Store(slices.Clone(projects))
	return projects, nil
}

func (c *Client) UpdateProject(ctx context.Context, p model.Project) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/update_project", p); err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	c.projects.Drop()
	return nil
}

func (c *Client) DeleteProject(ctx context.Context, code string) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/delete_project/"+url.PathEscape(code), nil); err != nil {
		return fmt.Errorf("deleting project %q: %w", code, err)
	}
	c.projects.Drop()
	return nil
}
