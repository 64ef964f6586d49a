// Package storefront is the DI container for the shopper-facing
// service: catalog proxy, search pipeline, and per-shopper cart stores.
package storefront

import (
	"context"

	"github.com/sirupsen/logrus"

	"storefront/internal/adapters/out/cartapi"
	"storefront/internal/adapters/out/catalogapi"
	catalogquery "storefront/internal/application/query/catalog"
	"storefront/internal/cartstore"
	"storefront/internal/platform/di/shared"
)

type Container struct {
	Infra *shared.Infra

	Catalog *catalogapi.Client
	CartAPI *cartapi.Client

	CatalogQ *catalogquery.Query
	Manager  *cartstore.Manager
}

func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil {
		var err error
		infra, err = shared.NewAuthInfra(ctx)
		if err != nil {
			return nil, err
		}
	}
	cfg := infra.Config
	log := logrus.NewEntry(logrus.StandardLogger())

	c := &Container{Infra: infra}
	c.Catalog = catalogapi.New(cfg.CatalogBaseURL)
	c.CartAPI = cartapi.New(cfg.CartAPIBaseURL)
	c.CatalogQ = catalogquery.New(c.Catalog, log)
	c.Manager = cartstore.NewManager(c.CartAPI, log)

	log.WithFields(logrus.Fields{
		"catalog":      cfg.CatalogBaseURL,
		"cartApi":      cfg.CartAPIBaseURL,
		"firebaseAuth": infra.FirebaseAuth != nil,
	}).Info("storefront container built")

	return c, nil
}
