// Package shared holds runtime infrastructure shared by the DI
// containers: external clients and config-resolved settings.
//
// Infra must NOT depend on routers, handlers, or queries.
package shared

import (
	"context"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
	firestoreinfra "storefront/internal/infra/firestore"
)

// Infra owns the external clients (Close-managed) plus settings
// resolved once at boot.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Postgres      *database.DB

	// Resolved from env or Secret Manager
	SendGridAPIKey string
}

// NewInfra initializes the full infra set for the persistence service.
// Firestore is strict (return error). GCS, Firebase/Auth, Secret
// Manager and Postgres are best-effort (warn + continue); features
// depending on a missing client are disabled, not fatal.
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg, err := appcfg.Load()
	if err != nil {
		return nil, err
	}

	projectID := resolveProjectID(cfg)
	if projectID == "" {
		return nil, errors.New("shared.infra: project id is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
	}

	clientOpts := credentialOptions(cfg)

	// Secret Manager (best-effort)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			logrus.WithError(err).Warn("secret manager init failed; secret-backed settings are disabled")
			sm = nil
		}
		inf.SecretManager = sm
	}

	// Firestore (strict)
	{
		fs, err := firestoreinfra.NewClient(ctx, inf.ProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "shared.infra: firestore init failed (project=%s)", inf.ProjectID)
		}
		inf.Firestore = fs.Client
	}

	// GCS (best-effort; avatar uploads are disabled without it)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			logrus.WithError(err).Warn("gcs init failed; avatar uploads are disabled")
			gcsClient = nil
		}
		inf.GCS = gcsClient
	}

	// Firebase App/Auth (best-effort)
	inf.FirebaseApp, inf.FirebaseAuth = newFirebaseAuth(ctx, cfg.FirebaseProjectID, clientOpts)

	// Postgres (optional user store)
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		db, err := database.NewConnection(dsn)
		if err != nil {
			logrus.WithError(err).Warn("postgres init failed; falling back to firestore user store")
			db = nil
		}
		inf.Postgres = db
	}

	inf.SendGridAPIKey = inf.resolveSendGridKey(ctx)

	return inf, nil
}

// NewAuthInfra initializes only what the shopper-facing service needs:
// config plus Firebase Auth for ID-token verification. The auth client
// is best-effort; protected endpoints fail closed while public catalog
// routes keep working.
func NewAuthInfra(ctx context.Context) (*Infra, error) {
	cfg, err := appcfg.Load()
	if err != nil {
		return nil, err
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: resolveProjectID(cfg),
	}
	inf.FirebaseApp, inf.FirebaseAuth = newFirebaseAuth(ctx, inf.ProjectID, credentialOptions(cfg))
	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.Postgres != nil {
		_ = i.Postgres.Close()
	}
	return nil
}

// resolveSendGridKey prefers the environment value and falls back to
// Secret Manager when only the secret name is configured.
func (i *Infra) resolveSendGridKey(ctx context.Context) string {
	if key := strings.TrimSpace(i.Config.SendGridAPIKey); key != "" {
		return key
	}

	secretName := strings.TrimSpace(i.Config.SendGridSecretName)
	if secretName == "" || i.SecretManager == nil || i.ProjectID == "" {
		return ""
	}

	name := "projects/" + i.ProjectID + "/secrets/" + secretName + "/versions/latest"
	resp, err := i.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		logrus.WithField("secret", secretName).WithError(err).Warn("sendgrid key fetch failed; welcome mail is disabled")
		return ""
	}
	if resp == nil || resp.Payload == nil {
		return ""
	}
	return strings.TrimSpace(string(resp.Payload.Data))
}

func newFirebaseAuth(ctx context.Context, projectID string, clientOpts []option.ClientOption) (*firebase.App, *firebaseauth.Client) {
	fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(projectID)}
	fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
	if err != nil {
		logrus.WithError(err).Warn("firebase app init failed; token verification is disabled")
		return nil, nil
	}

	authClient, err := fbApp.Auth(ctx)
	if err != nil {
		logrus.WithError(err).Warn("firebase auth init failed; token verification is disabled")
		return fbApp, nil
	}

	logrus.Info("firebase auth initialized")
	return fbApp, authClient
}

func credentialOptions(cfg *appcfg.Config) []option.ClientOption {
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		return nil // Application Default Credentials
	}
	return []option.ClientOption{option.WithCredentialsFile(credFile)}
}

func resolveProjectID(cfg *appcfg.Config) string {
	if cfg != nil {
		if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
			return v
		}
	}

	for _, k := range []string{
		"FIRESTORE_PROJECT_ID",
		"GCP_PROJECT_ID",
		"GOOGLE_CLOUD_PROJECT",
		"FIREBASE_PROJECT_ID",
	} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}

	return ""
}
