// Package config loads process configuration from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds every setting both binaries read. Unset optional values
// disable the integration they belong to (Secret Manager, SendGrid,
// Postgres, GCS); the servers still come up.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// GCP / Firestore
	FirestoreProjectID       string `envconfig:"FIRESTORE_PROJECT_ID"`
	FirestoreCredentialsFile string `envconfig:"FIRESTORE_CREDENTIALS_FILE"`
	FirebaseProjectID        string `envconfig:"FIREBASE_PROJECT_ID"`

	// Upstream services
	CatalogBaseURL string `envconfig:"CATALOG_BASE_URL" default:"https://dummyjson.com"`
	CartAPIBaseURL string `envconfig:"CART_API_BASE_URL" default:"http://localhost:8080"`

	// HTTP
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"*"`

	// Mail. The API key comes from the environment directly, or is
	// resolved from Secret Manager when only the secret name is set.
	SendGridAPIKey     string `envconfig:"SENDGRID_API_KEY"`
	SendGridSecretName string `envconfig:"SENDGRID_SECRET_NAME"`
	SendGridFrom       string `envconfig:"SENDGRID_FROM" default:"no-reply@storefront.example.com"`

	// Avatar storage
	AvatarBucket string `envconfig:"AVATAR_BUCKET"`

	// Optional Postgres user store; Firestore is used when empty.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
}

// Load reads the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "load config from environment")
	}
	if cfg.FirebaseProjectID == "" {
		cfg.FirebaseProjectID = cfg.FirestoreProjectID
	}
	return &cfg, nil
}
