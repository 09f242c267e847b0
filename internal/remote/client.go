// Package remote implements the typed HTTP client for the external todo API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/locvowork/todo_sync_sample/pkg/dataflow"
)

// ErrNotFound is returned when the external API responds 404. Callers check
// it with errors.Is; deletion propagation treats it as success.
var ErrNotFound = errors.New("remote: not found")

// Config holds the externally supplied client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
}

// Client talks to the external todo API. Transient failures (network errors,
// 5xx) are retried with exponential backoff; 404 surfaces as ErrNotFound
// without retrying.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCount int
	backoff    func(attempt int) time.Duration
}

// NewClient creates a Client from config.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retryCount: cfg.RetryCount,
		backoff:    dataflow.ExponentialBackoff(cfg.RetryDelay),
	}
}

// ListAll fetches every remote list with its items.
func (c *Client) ListAll(ctx context.Context) ([]RemoteList, error) {
	var lists []RemoteList
	if err := c.do(ctx, http.MethodGet, "/lists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Create creates a remote list together with its items.
func (c *Client) Create(ctx context.Context, input RemoteListInput) (*RemoteList, error) {
	var created RemoteList
	if err := c.do(ctx, http.MethodPost, "/lists", input, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update patches a remote list.
func (c *Client) Update(ctx context.Context, remoteListID string, patch RemoteListPatch) (*RemoteList, error) {
	var updated RemoteList
	if err := c.do(ctx, http.MethodPut, "/lists/"+url.PathEscape(remoteListID), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a remote list.
func (c *Client) Delete(ctx context.Context, remoteListID string) error {
	return c.do(ctx, http.MethodDelete, "/lists/"+url.PathEscape(remoteListID), nil, nil)
}

// UpdateItem patches a remote item.
func (c *Client) UpdateItem(ctx context.Context, remoteListID, remoteItemID string, patch RemoteItemPatch) (*RemoteItem, error) {
	var updated RemoteItem
	path := "/lists/" + url.PathEscape(remoteListID) + "/items/" + url.PathEscape(remoteItemID)
	if err := c.do(ctx, http.MethodPut, path, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteItem removes a remote item.
func (c *Client) DeleteItem(ctx context.Context, remoteListID, remoteItemID string) error {
	path := "/lists/" + url.PathEscape(remoteListID) + "/items/" + url.PathEscape(remoteItemID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do executes one API call with retries. The request body is re-encoded per
// attempt so retries never reuse a consumed reader.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.backoff(attempt)); err != nil {
				return err
			}
		}

		retryable, err := c.doOnce(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}

	return fmt.Errorf("%s %s failed after %d attempts: %w", method, path, c.retryCount+1, lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body interface{}, out interface{}) (retryable bool, err error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors and timeouts are transient.
		return true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrNotFound
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("remote returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("remote returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
