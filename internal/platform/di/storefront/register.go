package storefront

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"storefront/internal/adapters/in/http/middleware"
	storefrontHandler "storefront/internal/adapters/in/http/storefront/handler"
)

// Register mounts the shopper routes onto mux. Catalog and search are
// public; cart and session require a verified Firebase ID token and
// fail closed (503) when the auth client never initialized.
func Register(mux *http.ServeMux, cont *Container) {
	if mux == nil || cont == nil {
		return
	}
	log := logrus.NewEntry(logrus.StandardLogger())

	catalogH := storefrontHandler.NewCatalogHandler(cont.Catalog, log)
	mux.Handle("/storefront/products", catalogH)
	mux.Handle("/storefront/products/", catalogH)
	mux.Handle("/storefront/categories", catalogH)

	searchH := storefrontHandler.NewSearchHandler(cont.CatalogQ, log)
	mux.Handle("/storefront/search", searchH)
	mux.Handle("/storefront/category/", searchH)

	authMW := &middleware.FirebaseAuth{Auth: cont.Infra.FirebaseAuth}
	if cont.Infra.FirebaseAuth == nil {
		log.Warn("firebase auth is nil; protected endpoints will return 503")
	}

	cartH := authMW.Handler(storefrontHandler.NewCartHandler(cont.Manager, cont.Catalog, log))
	mux.Handle("/storefront/me/cart", cartH)
	mux.Handle("/storefront/me/cart/", cartH)

	sessionH := authMW.Handler(storefrontHandler.NewSessionHandler(cont.Manager, log))
	mux.Handle("/storefront/me", sessionH)
	mux.Handle("/storefront/sign-out", sessionH)

	log.Info("storefront routes registered")
}
