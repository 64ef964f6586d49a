// Package db holds the Postgres variants of the persistence adapters,
// selected over Firestore when POSTGRES_DSN is configured.
package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	userdom "storefront/internal/domain/user"
)

// UserRepositoryPG implements user.Repository on Postgres.
//
// Schema:
//
//	CREATE TABLE users (
//	    email         TEXT        NOT NULL,
//	    provider      TEXT        NOT NULL,
//	    name          TEXT        NOT NULL DEFAULT '',
//	    phone         TEXT        NOT NULL DEFAULT '',
//	    password_hash TEXT        NOT NULL DEFAULT '',
//	    google_id     TEXT        NOT NULL DEFAULT '',
//	    avatar_url    TEXT        NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (email, provider)
//	);
type UserRepositoryPG struct {
	DB *sql.DB
}

func NewUserRepositoryPG(db *sql.DB) *UserRepositoryPG {
	return &UserRepositoryPG{DB: db}
}

const userColumns = `email, provider, name, phone, password_hash, google_id, avatar_url, created_at`

func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*userdom.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
ORDER BY created_at
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, q, normalize(email))
	return scanUser(row)
}

func (r *UserRepositoryPG) GetByEmailAndProvider(ctx context.Context, email string, provider userdom.Provider) (*userdom.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1 AND provider = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, q, normalize(email), string(provider))
	return scanUser(row)
}

func (r *UserRepositoryPG) Create(ctx context.Context, u *userdom.User) error {
	if u == nil {
		return errors.New("user_repository_pg: user is nil")
	}

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, q,
		normalize(u.Email),
		string(u.Provider),
		u.Name,
		u.Phone,
		u.PasswordHash,
		u.GoogleID,
		u.AvatarURL,
		createdAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return userdom.ErrAlreadyExists
		}
		return errors.Wrap(err, "user_repository_pg: insert")
	}
	return nil
}

func (r *UserRepositoryPG) UpdateAvatarURL(ctx context.Context, email, avatarURL string) error {
	const q = `UPDATE users SET avatar_url = $2 WHERE email = $1`
	res, err := r.DB.ExecContext(ctx, q, normalize(email), strings.TrimSpace(avatarURL))
	if err != nil {
		return errors.Wrap(err, "user_repository_pg: update avatar")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "user_repository_pg: rows affected")
	}
	if n == 0 {
		return userdom.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*userdom.User, error) {
	var (
		u        userdom.User
		provider string
	)
	err := row.Scan(
		&u.Email,
		&provider,
		&u.Name,
		&u.Phone,
		&u.PasswordHash,
		&u.GoogleID,
		&u.AvatarURL,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, userdom.ErrNotFound
		}
		return nil, errors.Wrap(err, "user_repository_pg: scan")
	}
	u.Provider = userdom.Provider(provider)
	return &u, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
