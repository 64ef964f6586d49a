package storefrontHandler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/adapters/out/catalogapi"
	"storefront/internal/cartstore"
	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
)

// cartView is what the frontend renders: a Loading flag while the
// authoritative remote read is in flight, then the optimistic local
// state after every mutation.
type cartView struct {
	Loading    bool               `json:"loading"`
	Items      []cartdom.LineItem `json:"items"`
	TotalPrice float64            `json:"totalPrice"`
	ItemCount  int                `json:"itemCount"`
}

type addItemReq struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type setQuantityReq struct {
	Quantity int `json:"quantity"`
}

// CartHandler serves the signed-in shopper's cart. The auth middleware
// has already resolved the identity; the manager maps it to that
// shopper's in-memory store.
//
// Routes:
// - GET    /storefront/me/cart
// - POST   /storefront/me/cart/items
// - PUT    /storefront/me/cart/items/{productId}
// - DELETE /storefront/me/cart/items/{productId}
type CartHandler struct {
	manager *cartstore.Manager
	catalog *catalogapi.Client
	log     *logrus.Entry
}

func NewCartHandler(manager *cartstore.Manager, catalog *catalogapi.Client, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CartHandler{manager: manager, catalog: catalog, log: log.WithField("handler", "cart")}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil || h.catalog == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	id := middleware.CurrentIdentity(r)
	if id == nil {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	store := h.manager.Ensure(id)

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/storefront/me/cart" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, snapshot(store))

	case path == "/storefront/me/cart/items" && r.Method == http.MethodPost:
		h.handleAdd(w, r, store)

	case strings.HasPrefix(path, "/storefront/me/cart/items/"):
		rawID := strings.TrimPrefix(path, "/storefront/me/cart/items/")
		productID, err := strconv.Atoi(rawID)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "product id must be numeric")
			return
		}
		switch r.Method {
		case http.MethodPut:
			h.handleSetQuantity(w, r, store, productID)
		case http.MethodDelete:
			store.RemoveItem(productID)
			writeJSON(w, http.StatusOK, snapshot(store))
		default:
			methodNotAllowed(w)
		}

	default:
		notFound(w)
	}
}

// handleAdd resolves the product against the catalog so the line item
// carries the title, price, and thumbnail at time of add.
func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request, store *cartstore.Store) {
	var req addItemReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.catalog.FetchProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		h.log.WithField("productId", req.ProductID).WithError(err).Error("product lookup for add failed")
		writeErr(w, http.StatusInternalServerError, "catalog unavailable")
		return
	}

	if err := store.AddItem(*p, req.Quantity); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot(store))
}

func (h *CartHandler) handleSetQuantity(w http.ResponseWriter, r *http.Request, store *cartstore.Store, productID int) {
	var req setQuantityReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetQuantity(productID, req.Quantity); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snapshot(store))
}

func snapshot(store *cartstore.Store) cartView {
	return cartView{
		Loading:    store.Loading(),
		Items:      store.Items(),
		TotalPrice: store.TotalPrice(),
		ItemCount:  store.ItemCount(),
	}
}
