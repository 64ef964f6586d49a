package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	apiHandler "storefront/internal/adapters/in/http/api/handler"
)

// Register mounts the persistence routes onto mux. Handlers do their
// own method/subpath dispatch.
func Register(mux *http.ServeMux, cont *Container) {
	if mux == nil || cont == nil {
		return
	}
	log := logrus.NewEntry(logrus.StandardLogger())

	userH := apiHandler.NewUserHandler(cont.UserUC, log)
	mux.Handle("/users", userH)
	mux.Handle("/users/", userH)

	productH := apiHandler.NewProductHandler(cont.ProductUC, log)
	mux.Handle("/products", productH)
	mux.Handle("/products/", productH)

	cartH := apiHandler.NewCartHandler(cont.CartUC, log)
	mux.Handle("/cart", cartH)
	mux.Handle("/cart/", cartH)

	log.Info("api routes registered")
}
