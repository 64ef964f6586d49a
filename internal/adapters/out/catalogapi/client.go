// Package catalogapi is the HTTP client for the remote product catalog
// (a DummyJSON-shaped API). Pure request/response; no caching.
package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	productdom "storefront/internal/domain/product"
)

// Page is one product listing page.
type Page struct {
	Products []productdom.Product `json:"products"`
	Total    int                  `json:"total"`
	Skip     int                  `json:"skip"`
	Limit    int                  `json:"limit"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL (e.g. https://dummyjson.com).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithHTTPClient is useful for tests.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := New(baseURL)
	if hc != nil {
		c.http = hc
	}
	return c
}

// FetchProducts returns one page of the catalog. limit <= 0 falls back
// to the remote default page size.
func (c *Client) FetchProducts(ctx context.Context, limit int) (*Page, error) {
	u := c.baseURL + "/products"
	if limit > 0 {
		u += fmt.Sprintf("?limit=%d", limit)
	}

	var page Page
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchProduct returns a single product or product.ErrNotFound.
func (c *Client) FetchProduct(ctx context.Context, id int) (*productdom.Product, error) {
	var p productdom.Product
	err := c.getJSON(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, id), &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchCategories returns the remote category index in its own order.
func (c *Client) FetchCategories(ctx context.Context) ([]productdom.Category, error) {
	var cats []productdom.Category
	if err := c.getJSON(ctx, c.baseURL+"/products/categories", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// FetchByCategory returns all products tagged with slug.
func (c *Client) FetchByCategory(ctx context.Context, slug string) ([]productdom.Product, error) {
	u := c.baseURL + "/products/category/" + url.PathEscape(strings.TrimSpace(slug))
	var page Page
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return page.Products, nil
}

// Search returns products matching the free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]productdom.Product, error) {
	u := c.baseURL + "/products/search?q=" + url.QueryEscape(strings.TrimSpace(query))
	var page Page
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return page.Products, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrap(err, "catalogapi: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "catalogapi: request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return productdom.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return errors.Errorf("catalogapi: unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "catalogapi: decode response")
	}
	return nil
}
