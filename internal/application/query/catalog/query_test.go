package catalogquery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdom "storefront/internal/domain/catalog"
	productdom "storefront/internal/domain/product"
)

type fakeGateway struct {
	categories []productdom.Category
	byCategory map[string][]productdom.Product
	searchHits []productdom.Product

	searchErr   error
	searchCalls int
}

func (g *fakeGateway) FetchCategories(ctx context.Context) ([]productdom.Category, error) {
	return g.categories, nil
}

func (g *fakeGateway) FetchByCategory(ctx context.Context, slug string) ([]productdom.Product, error) {
	return g.byCategory[slug], nil
}

func (g *fakeGateway) Search(ctx context.Context, query string) ([]productdom.Product, error) {
	g.searchCalls++
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	return g.searchHits, nil
}

func wideOpen(t *testing.T) catalogdom.FilterConfig {
	t.Helper()
	cfg, err := catalogdom.NewFilterConfig(0, 1000, nil, catalogdom.SortDefault)
	require.NoError(t, err)
	return cfg
}

func TestQuery_Search_EmptyTermNeverFetches(t *testing.T) {
	gw := &fakeGateway{}
	q := New(gw, nil)

	for _, term := range []string{"", "   "} {
		_, err := q.Search(context.Background(), term, wideOpen(t))
		assert.ErrorIs(t, err, ErrEmptyQuery, "term=%q", term)
	}
	assert.Zero(t, gw.searchCalls, "blank query must not hit the remote")
}

func TestQuery_Search_FetchThenFilter(t *testing.T) {
	gw := &fakeGateway{
		categories: []productdom.Category{
			{Slug: "beauty", Name: "Beauty"},
			{Slug: "laptops", Name: "Laptops"},
			{Slug: "groceries", Name: "Groceries"},
		},
		searchHits: []productdom.Product{
			{ID: 1, Category: "beauty", Price: 80},
			{ID: 2, Category: "laptops", Price: 20},
			{ID: 3, Category: "beauty", Price: 40},
		},
	}
	q := New(gw, nil)

	cfg, err := catalogdom.NewFilterConfig(20, 50, nil, catalogdom.SortPriceAsc)
	require.NoError(t, err)

	res, err := q.Search(context.Background(), "phone", cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total, "total counts candidates before filtering")
	require.Len(t, res.Products, 2)
	assert.Equal(t, 2, res.Products[0].ID)
	assert.Equal(t, 3, res.Products[1].ID)

	// facets: only categories occurring in the candidate set, in the
	// remote index's order
	require.Len(t, res.Categories, 2)
	assert.Equal(t, "beauty", res.Categories[0].Slug)
	assert.Equal(t, "laptops", res.Categories[1].Slug)
}

func TestQuery_Search_FetchFailureDegradesToEmpty(t *testing.T) {
	gw := &fakeGateway{searchErr: errors.New("upstream down")}
	q := New(gw, nil)

	res, err := q.Search(context.Background(), "phone", wideOpen(t))
	require.NoError(t, err, "transport failure is not surfaced")
	assert.Empty(t, res.Products)
	assert.Empty(t, res.Categories)
	assert.Zero(t, res.Total)
}

func TestQuery_ByCategory(t *testing.T) {
	gw := &fakeGateway{
		byCategory: map[string][]productdom.Product{
			"beauty": {
				{ID: 1, Category: "beauty", Price: 80},
				{ID: 2, Category: "beauty", Price: 20},
			},
		},
	}
	q := New(gw, nil)

	cfg, err := catalogdom.NewFilterConfig(0, 50, nil, catalogdom.SortDefault)
	require.NoError(t, err)

	res, err := q.ByCategory(context.Background(), "beauty", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Products, 1)
	assert.Equal(t, 2, res.Products[0].ID)
}
