package storefrontHandler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront/internal/adapters/out/catalogapi"
	productdom "storefront/internal/domain/product"
)

// CatalogHandler proxies the remote catalog to the frontend.
//
// Routes:
// - GET /storefront/products?limit=
// - GET /storefront/products/{id}
// - GET /storefront/categories
type CatalogHandler struct {
	client *catalogapi.Client
	log    *logrus.Entry
}

func NewCatalogHandler(client *catalogapi.Client, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CatalogHandler{client: client, log: log.WithField("handler", "catalog")}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		writeErr(w, http.StatusInternalServerError, "catalog handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/storefront/products":
		h.handleList(w, r)

	case strings.HasPrefix(path, "/storefront/products/"):
		h.handleGet(w, r, strings.TrimPrefix(path, "/storefront/products/"))

	case path == "/storefront/categories":
		h.handleCategories(w, r)

	default:
		notFound(w)
	}
}

// handleList degrades a catalog failure to an empty page: the frontend
// renders "no products found", never an error dialog.
func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.client.FetchProducts(r.Context(), intQuery(r, "limit", 0))
	if err != nil {
		h.log.WithError(err).Error("catalog fetch failed; returning empty page")
		writeJSON(w, http.StatusOK, catalogapi.Page{Products: []productdom.Product{}})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) handleGet(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "product id must be numeric")
		return
	}

	p, err := h.client.FetchProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		h.log.WithField("id", id).WithError(err).Error("product fetch failed")
		writeErr(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.client.FetchCategories(r.Context())
	if err != nil {
		h.log.WithError(err).Error("categories fetch failed; returning empty list")
		writeJSON(w, http.StatusOK, []productdom.Category{})
		return
	}
	writeJSON(w, http.StatusOK, cats)
}
