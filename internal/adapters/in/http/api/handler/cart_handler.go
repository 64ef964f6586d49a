package apiHandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
)

// CartHandler serves the cart persistence endpoints, keyed by email.
//
// Routes:
// - GET  /cart/{email}   full line-item collection (empty if none)
// - POST /cart           {email, items}: create-or-replace
type CartHandler struct {
	uc  *usecase.CartUsecase
	log *logrus.Entry
}

func NewCartHandler(uc *usecase.CartUsecase, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CartHandler{uc: uc, log: log.WithField("handler", "cart")}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case path == "/cart" && r.Method == http.MethodPost:
		h.handleReplace(w, r)

	case strings.HasPrefix(path, "/cart/") && r.Method == http.MethodGet:
		h.handleGet(w, r, unescape(strings.TrimPrefix(path, "/cart/")))

	case path == "/cart" || strings.HasPrefix(path, "/cart/"):
		methodNotAllowed(w)

	default:
		notFound(w)
	}
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request, email string) {
	if email == "" {
		writeErr(w, http.StatusBadRequest, "email is required")
		return
	}

	c, err := h.uc.Get(r.Context(), email)
	if err != nil {
		if errors.Is(err, usecase.ErrCartInvalidArgument) || errors.Is(err, cartdom.ErrInvalidCart) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.WithField("email", email).WithError(err).Error("cart read failed")
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, c)
}

type replaceCartReq struct {
	Email string             `json:"email"`
	Items []cartdom.LineItem `json:"items"`
}

func (h *CartHandler) handleReplace(w http.ResponseWriter, r *http.Request) {
	var req replaceCartReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeErr(w, http.StatusBadRequest, "email is required")
		return
	}

	c, err := h.uc.ReplaceAll(r.Context(), req.Email, req.Items)
	if err != nil {
		if errors.Is(err, usecase.ErrCartInvalidArgument) || errors.Is(err, cartdom.ErrInvalidCart) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.WithField("email", req.Email).WithError(err).Error("cart replace failed")
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "cart saved successfully",
		"cart":    c,
	})
}
