// Package checkoutfn calls a hosted checkout function over HTTPS instead of
// talking to Stripe from this process.
package checkoutfn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"creator-app/internal/service/checkout"
)

type Client struct {
	url  string
	key  string
	http *http.Client
}

func New(url, key string) *Client {
	// Bounded by the caller's context only.
	return &Client{url: url, key: key, http: &http.Client{}}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

type response struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	Error     string `json:"error"`
}

// CreateCheckout posts the payload once. It never retries.
func (c *Client) CreateCheckout(ctx context.Context, p checkout.Payload) (checkout.Response, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return checkout.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return checkout.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return checkout.Response{}, fmt.Errorf("checkout function: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return checkout.Response{}, fmt.Errorf("checkout function: read body: %w", err)
	}

	var out response
	decodeErr := json.Unmarshal(raw, &out)

	if res.StatusCode == http.StatusTooManyRequests {
		return checkout.Response{}, &checkout.Error{Reason: checkout.ReasonRateLimited, Err: errors.New(firstNonEmpty(out.Error, res.Status))}
	}
	if res.StatusCode >= 300 {
		return checkout.Response{}, fmt.Errorf("checkout function returned %d: %s", res.StatusCode, firstNonEmpty(out.Error, string(raw)))
	}
	if decodeErr != nil {
		return checkout.Response{}, &checkout.Error{
			Reason: checkout.ReasonProvider,
			Err:    fmt.Errorf("checkout function: decode response %q: %w", truncate(raw, 200), decodeErr),
		}
	}
	if out.Error != "" {
		return checkout.Response{}, errors.New(out.Error)
	}
	return checkout.Response{SessionID: out.SessionID, URL: out.URL}, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
