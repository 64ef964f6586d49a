// Package api is the DI container for the persistence service.
// Pure DI: build deps only, no routing branching.
package api

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/internal/adapters/out/db"
	outfs "storefront/internal/adapters/out/firestore"
	gcso "storefront/internal/adapters/out/gcs"
	"storefront/internal/adapters/out/mail"
	"storefront/internal/application/usecase"
	userdom "storefront/internal/domain/user"
	"storefront/internal/platform/di/shared"
)

type Container struct {
	Infra *shared.Infra

	UserUC    *usecase.UserUsecase
	ProductUC *usecase.ProductUsecase
	CartUC    *usecase.CartUsecase
}

func NewContainer(ctx context.Context, infra *shared.Infra) (*Container, error) {
	if infra == nil {
		var err error
		infra, err = shared.NewInfra(ctx)
		if err != nil {
			return nil, err
		}
	}
	if infra.Firestore == nil {
		return nil, errors.New("di.api: infra.Firestore is nil")
	}
	cfg := infra.Config

	c := &Container{Infra: infra}
	log := logrus.NewEntry(logrus.StandardLogger())

	// User store: Postgres when configured, Firestore otherwise.
	var userRepo userdom.Repository
	if infra.Postgres != nil {
		userRepo = db.NewUserRepositoryPG(infra.Postgres.Client)
		log.Info("user store: postgres")
	} else {
		userRepo = outfs.NewUserRepositoryFS(infra.Firestore)
		log.Info("user store: firestore")
	}

	// Welcome mail (optional)
	var mailer usecase.WelcomeMailer
	if infra.SendGridAPIKey != "" {
		mailer = mail.NewSendGridMailer(infra.SendGridAPIKey, cfg.SendGridFrom, log)
	} else {
		log.Warn("sendgrid key not configured; welcome mail is disabled")
	}

	// Avatar storage (optional)
	var avatars usecase.AvatarStore
	if infra.GCS != nil && cfg.AvatarBucket != "" {
		avatars = gcso.NewAvatarStoreGCS(infra.GCS, cfg.AvatarBucket)
	} else {
		log.Warn("avatar bucket not configured; avatar uploads are disabled")
	}

	c.UserUC = usecase.NewUserUsecase(userRepo, mailer, avatars, log)
	c.ProductUC = usecase.NewProductUsecase(outfs.NewProductRepositoryFS(infra.Firestore))
	c.CartUC = usecase.NewCartUsecase(outfs.NewCartRepositoryFS(infra.Firestore))

	log.WithFields(logrus.Fields{
		"firestore": infra.Firestore != nil,
		"postgres":  infra.Postgres != nil,
		"mailer":    mailer != nil,
		"avatars":   avatars != nil,
	}).Info("api container built")

	return c, nil
}
