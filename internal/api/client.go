// Package api provides the HTTP client for the remote terminal API: event
// search, trending snapshots, category listing, and the chat analysis
// endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"polyterm/internal/domain"
	"polyterm/internal/util"
)

// EventLimit is the fixed page size requested from the events endpoint.
const EventLimit = 50

// Client talks to the terminal API over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the API at baseURL. The timeout bounds each
// individual request, including chat sends.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ---------------------------------------------------------------------------
// Fetch endpoints
// ---------------------------------------------------------------------------

// FetchEvents retrieves the current event list, optionally filtered by
// search text and category. Empty filters are omitted from the query string
// entirely rather than sent as empty parameters.
func (c *Client) FetchEvents(ctx context.Context, search, category string) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", EventLimit))
	if category != "" {
		params.Set("category", category)
	}
	if search != "" {
		params.Set("search", search)
	}

	var events []domain.Event
	if err := c.getJSON(ctx, "/api/events?"+params.Encode(), &events); err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	return events, nil
}

// FetchTrending retrieves the trending-events snapshot.
func (c *Client) FetchTrending(ctx context.Context) ([]domain.TrendingEvent, error) {
	var trending []domain.TrendingEvent
	if err := c.getJSON(ctx, "/api/trending", &trending); err != nil {
		return nil, fmt.Errorf("fetching trending: %w", err)
	}
	return trending, nil
}

// FetchCategories retrieves the known category names.
func (c *Client) FetchCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "/api/categories", &categories); err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	return categories, nil
}

// getJSON performs a GET against the API and decodes the JSON response.
// Transient failures (transport errors, 5xx) are retried with backoff; the
// read path is idempotent so retries are safe.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		return json.NewDecoder(resp.Body).Decode(out)
	})
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

// chatRequest is the wire format of the chat endpoint's request body.
type chatRequest struct {
	EventID  string           `json:"event_id"`
	Messages []domain.Message `json:"messages"`
}

// Chat sends the full message history for an event to the analysis endpoint
// and returns the assistant's reply text. Unlike the fetch endpoints, a chat
// send is issued exactly once: retrying could duplicate the assistant turn.
func (c *Client) Chat(ctx context.Context, eventID string, messages []domain.Message) (string, error) {
	body, err := json.Marshal(chatRequest{EventID: eventID, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending chat message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading chat response: %w", err)
	}

	return DecodeChatReply(payload), nil
}

// DecodeChatReply extracts the assistant reply text from a chat response
// payload. The endpoint's shape is not guaranteed: a bare JSON string is
// used verbatim, an object with a string "response" field yields that field,
// and anything else falls back to the payload text itself. The chain never
// fails; only transport and status errors count as chat failures.
func DecodeChatReply(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		if raw, ok := obj["response"]; ok {
			var field string
			if err := json.Unmarshal(raw, &field); err == nil {
				return field
			}
		}
	}

	return string(trimmed)
}
