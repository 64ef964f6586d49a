// Package cartapi is the HTTP client for the cart persistence service
// (the companion api binary). It implements cartstore.Persistence.
package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	cartdom "storefront/internal/domain/cart"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := New(baseURL)
	if hc != nil {
		c.http = hc
	}
	return c
}

type cartPayload struct {
	Email string             `json:"email"`
	Items []cartdom.LineItem `json:"items"`
}

// Fetch reads the persisted cart for email; a missing record is
// (nil, nil).
func (c *Client) Fetch(ctx context.Context, email string) ([]cartdom.LineItem, error) {
	u := c.baseURL + "/cart/" + url.PathEscape(strings.TrimSpace(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "cartapi: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "cartapi: fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("cartapi: unexpected status %d fetching cart", resp.StatusCode)
	}

	var payload cartPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "cartapi: decode cart")
	}
	return payload.Items, nil
}

// Replace overwrites the full cart for email (upsert semantics).
func (c *Client) Replace(ctx context.Context, email string, items []cartdom.LineItem) error {
	if items == nil {
		items = []cartdom.LineItem{}
	}
	body, err := json.Marshal(cartPayload{Email: strings.TrimSpace(email), Items: items})
	if err != nil {
		return errors.Wrap(err, "cartapi: encode cart")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "cartapi: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "cartapi: replace failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("cartapi: unexpected status %d replacing cart", resp.StatusCode)
	}
	return nil
}
