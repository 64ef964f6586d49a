package storefrontHandler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/cartstore"
)

// SessionHandler handles sign-out: the shopper's in-memory cart is
// discarded while the persisted copy stays intact for the next sign-in.
//
// Routes:
// - POST /storefront/sign-out
// - GET  /storefront/me
type SessionHandler struct {
	manager *cartstore.Manager
	log     *logrus.Entry
}

func NewSessionHandler(manager *cartstore.Manager, log *logrus.Entry) http.Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SessionHandler{manager: manager, log: log.WithField("handler", "session")}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.manager == nil {
		writeErr(w, http.StatusInternalServerError, "session handler is not configured")
		return
	}

	id := middleware.CurrentIdentity(r)
	if id == nil {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	switch {
	case r.URL.Path == "/storefront/sign-out" && r.Method == http.MethodPost:
		h.manager.Drop(id.UID)
		h.log.WithField("uid", id.UID).Info("shopper signed out")
		writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})

	case r.URL.Path == "/storefront/me" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, id)

	default:
		notFound(w)
	}
}
