// Package catalogquery coordinates "fetch candidates, then filter"
// for the two catalog entry points: free-text search and category
// browsing. It owns neither navigation nor filter state; both arrive
// from the caller per request.
package catalogquery

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	catalogdom "storefront/internal/domain/catalog"
	productdom "storefront/internal/domain/product"
)

// ErrEmptyQuery signals "show the default catalog instead": an empty
// search term performs no fetch at all.
var ErrEmptyQuery = errors.New("catalog_query: empty search term")

// Gateway is the remote catalog service as this package consumes it.
type Gateway interface {
	FetchCategories(ctx context.Context) ([]productdom.Category, error)
	FetchByCategory(ctx context.Context, slug string) ([]productdom.Product, error)
	Search(ctx context.Context, query string) ([]productdom.Product, error)
}

// SearchResult carries the filtered view plus the category facets that
// actually occur in the unfiltered result set, so the caller can render
// only checkboxes that would do something.
type SearchResult struct {
	Products   []productdom.Product `json:"products"`
	Categories []productdom.Category `json:"categories"`
	Total      int                  `json:"total"`
}

// Query is the fetch-then-filter pipeline over the remote catalog.
type Query struct {
	gw  Gateway
	log *logrus.Entry
}

func New(gw Gateway, log *logrus.Entry) *Query {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Query{gw: gw, log: log.WithField("component", "catalog_query")}
}

// Search fetches candidates for term and hands them to the filter/sort
// engine. An empty term is ErrEmptyQuery (no fetch). A fetch failure is
// converted to an empty result and logged; callers never see an
// unhandled transport error here.
func (q *Query) Search(ctx context.Context, term string, cfg catalogdom.FilterConfig) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyQuery
	}

	candidates, err := q.gw.Search(ctx, term)
	if err != nil {
		q.log.WithField("term", term).WithError(err).Error("catalog search failed; returning empty result")
		return &SearchResult{Products: []productdom.Product{}, Categories: []productdom.Category{}}, nil
	}

	filtered := catalogdom.Apply(candidates, cfg)

	return &SearchResult{
		Products:   filtered,
		Categories: q.matchedCategories(ctx, candidates),
		Total:      len(candidates),
	}, nil
}

// ByCategory fetches a category's products and filters them. Failure
// degrades to an empty result, logged only.
func (q *Query) ByCategory(ctx context.Context, slug string, cfg catalogdom.FilterConfig) (*SearchResult, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrEmptyQuery
	}

	candidates, err := q.gw.FetchByCategory(ctx, slug)
	if err != nil {
		q.log.WithField("slug", slug).WithError(err).Error("category fetch failed; returning empty result")
		return &SearchResult{Products: []productdom.Product{}, Categories: []productdom.Category{}}, nil
	}

	filtered := catalogdom.Apply(candidates, cfg)

	return &SearchResult{
		Products:   filtered,
		Categories: []productdom.Category{{Slug: slug}},
		Total:      len(candidates),
	}, nil
}

// matchedCategories intersects the remote category index with the
// categories present in the candidate set, preserving the index order.
func (q *Query) matchedCategories(ctx context.Context, candidates []productdom.Product) []productdom.Category {
	present := map[string]bool{}
	for _, p := range candidates {
		if p.Category != "" {
			present[p.Category] = true
		}
	}
	if len(present) == 0 {
		return []productdom.Category{}
	}

	index, err := q.gw.FetchCategories(ctx)
	if err != nil {
		q.log.WithError(err).Warn("category index fetch failed; facets omitted")
		return []productdom.Category{}
	}

	out := make([]productdom.Category, 0, len(present))
	for _, c := range index {
		if present[c.Slug] {
			out = append(out, c)
		}
	}
	return out
}
