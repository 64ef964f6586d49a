package storefrontHandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	catalogquery "storefront/internal/application/query/catalog"
	productdom "storefront/internal/domain/product"
)

// searchResponse is the search payload. ShowDefault tells the frontend
// to fall back to the unfiltered catalog view (blank query).
type searchResponse struct {
	Products    []productdom.Product  `json:"products"`
	Categories  []productdom.Category `json:"categories"`
	Total       int                   `json:"total"`
	ShowDefault bool                  `json:"showDefault"`
}

// SearchHandler serves keyword search and category browsing, both
// refined through the shared filter pipeline.
//
// Routes:
// - GET /storefront/search?q=&categories=&minPrice=&maxPrice=&sort=
// - GET /storefront/category/{slug}?minPrice=&maxPrice=&sort=
type SearchHandler struct {
	query *catalogquery.Query
	log   *logrus.Entry
}

func NewSearchHandler(query *catalogquery.Query, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SearchHandler{query: query, log: log.WithField("handler", "search")}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.query == nil {
		writeErr(w, http.StatusInternalServerError, "search handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/storefront/search":
		h.handleSearch(w, r)

	case strings.HasPrefix(path, "/storefront/category/"):
		h.handleCategory(w, r, strings.TrimPrefix(path, "/storefront/category/"))

	default:
		notFound(w)
	}
}

func (h *SearchHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	cfg, err := filterConfigFromQuery(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.query.Search(r.Context(), r.URL.Query().Get("q"), cfg)
	if err != nil {
		if errors.Is(err, catalogquery.ErrEmptyQuery) {
			writeJSON(w, http.StatusOK, searchResponse{
				Products:    []productdom.Product{},
				Categories:  []productdom.Category{},
				ShowDefault: true,
			})
			return
		}
		h.log.WithError(err).Error("search failed")
		writeErr(w, http.StatusInternalServerError, "search unavailable")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Products:   res.Products,
		Categories: res.Categories,
		Total:      res.Total,
	})
}

func (h *SearchHandler) handleCategory(w http.ResponseWriter, r *http.Request, slug string) {
	if slug == "" {
		notFound(w)
		return
	}

	cfg, err := filterConfigFromQuery(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.query.ByCategory(r.Context(), slug, cfg)
	if err != nil {
		h.log.WithField("slug", slug).WithError(err).Error("category browse failed")
		writeErr(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Products:   res.Products,
		Categories: []productdom.Category{{Slug: slug, Name: categoryName(slug)}},
		Total:      res.Total,
	})
}

// categoryName mirrors the display rule used across the catalog: a slug
// like "mens-watches" renders as "Mens Watches".
func categoryName(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
