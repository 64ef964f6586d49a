package apiHandler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	usecase "storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
)

// ProductHandler serves the stored catalog and review submission.
//
// Routes:
// - GET  /products?limit=&skip=
// - GET  /products/{id}
// - POST /products/{id}/reviews
type ProductHandler struct {
	uc  *usecase.ProductUsecase
	log *logrus.Entry
}

func NewProductHandler(uc *usecase.ProductUsecase, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ProductHandler{uc: uc, log: log.WithField("handler", "products")}
}

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "product handler is not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/products" && r.Method == http.MethodGet:
		h.handleList(w, r)

	case strings.HasSuffix(path, "/reviews") && r.Method == http.MethodPost:
		raw := strings.TrimSuffix(strings.TrimPrefix(path, "/products/"), "/reviews")
		h.handleAddReview(w, r, raw)

	case strings.HasPrefix(path, "/products/") && r.Method == http.MethodGet:
		h.handleGet(w, r, strings.TrimPrefix(path, "/products/"))

	case path == "/products" || strings.HasPrefix(path, "/products/"):
		methodNotAllowed(w)

	default:
		notFound(w)
	}
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 30)
	skip := intQuery(r, "skip", 0)

	products, total, err := h.uc.List(r.Context(), limit, skip)
	if err != nil {
		h.log.WithError(err).Error("product list failed")
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"total":    total,
		"skip":     skip,
		"limit":    limit,
	})
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "product id must be numeric")
		return
	}

	p, err := h.uc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p)
}

type reviewReq struct {
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	ReviewerName  string `json:"reviewerName"`
	ReviewerEmail string `json:"reviewerEmail"`
}

func (h *ProductHandler) handleAddReview(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "product id must be numeric")
		return
	}

	var req reviewReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	p, err := h.uc.AddReview(r.Context(), id, usecase.ReviewInput{
		Rating:        req.Rating,
		Comment:       req.Comment,
		ReviewerName:  req.ReviewerName,
		ReviewerEmail: req.ReviewerEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, productdom.ErrNotFound):
			writeErr(w, http.StatusNotFound, "product not found")
		case errors.Is(err, productdom.ErrDuplicateReview):
			writeErr(w, http.StatusConflict, "you have already reviewed this product")
		case errors.Is(err, productdom.ErrInvalidReview):
			writeErr(w, http.StatusBadRequest, "invalid review")
		default:
			h.log.WithField("productId", id).WithError(err).Error("add review failed")
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "review added successfully",
		"rating":  p.Rating,
	})
}

func intQuery(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
