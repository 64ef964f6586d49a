package storefrontHandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogquery "storefront/internal/application/query/catalog"
	productdom "storefront/internal/domain/product"
)

type stubGateway struct {
	categories []productdom.Category
	byCategory map[string][]productdom.Product
	searchHits []productdom.Product
	searched   int
}

func (g *stubGateway) FetchCategories(ctx context.Context) ([]productdom.Category, error) {
	return g.categories, nil
}

func (g *stubGateway) FetchByCategory(ctx context.Context, slug string) ([]productdom.Product, error) {
	return g.byCategory[slug], nil
}

func (g *stubGateway) Search(ctx context.Context, query string) ([]productdom.Product, error) {
	g.searched++
	return g.searchHits, nil
}

func newSearchHandler(gw *stubGateway) http.Handler {
	return NewSearchHandler(catalogquery.New(gw, nil), nil)
}

func decodeSearch(t *testing.T, rec *httptest.ResponseRecorder) searchResponse {
	t.Helper()
	var body searchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestSearchHandler_BlankQuerySignalsDefaultCatalog(t *testing.T) {
	gw := &stubGateway{}
	h := newSearchHandler(gw)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storefront/search?q=", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeSearch(t, rec)
	assert.True(t, body.ShowDefault)
	assert.Empty(t, body.Products)
	assert.Zero(t, gw.searched, "blank query performs no remote fetch")
}

func TestSearchHandler_SearchAppliesFilters(t *testing.T) {
	gw := &stubGateway{
		categories: []productdom.Category{{Slug: "beauty", Name: "Beauty"}},
		searchHits: []productdom.Product{
			{ID: 1, Category: "beauty", Price: 80},
			{ID: 2, Category: "beauty", Price: 20},
			{ID: 3, Category: "beauty", Price: 40},
		},
	}
	h := newSearchHandler(gw)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/storefront/search?q=lipstick&minPrice=20&maxPrice=50&sort=priceLowToHigh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeSearch(t, rec)
	assert.False(t, body.ShowDefault)
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Products, 2)
	assert.Equal(t, 2, body.Products[0].ID)
	assert.Equal(t, 3, body.Products[1].ID)
}

func TestSearchHandler_RejectsInvalidFilterParams(t *testing.T) {
	h := newSearchHandler(&stubGateway{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/storefront/search?q=x&minPrice=50&maxPrice=20", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/storefront/search?q=x&sort=cheapest", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_CategoryBrowse(t *testing.T) {
	gw := &stubGateway{
		byCategory: map[string][]productdom.Product{
			"mens-watches": {
				{ID: 1, Category: "mens-watches", Price: 120},
				{ID: 2, Category: "mens-watches", Price: 60},
			},
		},
	}
	h := newSearchHandler(gw)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/storefront/category/mens-watches?maxPrice=100", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeSearch(t, rec)
	require.Len(t, body.Products, 1)
	assert.Equal(t, 2, body.Products[0].ID)
	require.Len(t, body.Categories, 1)
	assert.Equal(t, "Mens Watches", body.Categories[0].Name)
}

func TestSearchHandler_MethodNotAllowed(t *testing.T) {
	h := newSearchHandler(&stubGateway{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/storefront/search?q=x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
