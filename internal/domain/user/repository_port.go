package user

import "context"

// Repository is the persistence port for User.
//
// Two implementations exist: Firestore (default; collection "users",
// docId = "<email>#<provider>") and Postgres (selected when
// POSTGRES_DSN is set).
type Repository interface {
	// GetByEmail returns the user or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByEmailAndProvider returns the user or ErrNotFound.
	GetByEmailAndProvider(ctx context.Context, email string, provider Provider) (*User, error)

	// Create inserts the user; ErrAlreadyExists when the
	// (email, provider) pair is taken.
	Create(ctx context.Context, u *User) error

	// UpdateAvatarURL sets the stored avatar reference.
	UpdateAvatarURL(ctx context.Context, email, avatarURL string) error
}
