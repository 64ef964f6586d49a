package firestore

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	userdom "storefront/internal/domain/user"
)

// UserRepositoryFS implements user.Repository using Firestore.
//
// Collection design:
// - collection: users
// - docId: "<email>#<provider>" (one account per email per provider)
type UserRepositoryFS struct {
	Client *firestore.Client
}

func NewUserRepositoryFS(client *firestore.Client) *UserRepositoryFS {
	return &UserRepositoryFS{Client: client}
}

func (r *UserRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("users")
}

func userDocID(email string, provider userdom.Provider) string {
	return strings.ToLower(strings.TrimSpace(email)) + "#" + string(provider)
}

// GetByEmail returns the first account registered under email,
// regardless of provider.
func (r *UserRepositoryFS) GetByEmail(ctx context.Context, email string) (*userdom.User, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("user_repository_fs: firestore client is nil")
	}

	addr := strings.ToLower(strings.TrimSpace(email))
	if addr == "" {
		return nil, errors.New("user_repository_fs: email is empty")
	}

	it := r.col().Where("email", "==", addr).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return nil, userdom.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "user_repository_fs: query")
	}

	var u userdom.User
	if err := snap.DataTo(&u); err != nil {
		return nil, errors.Wrap(err, "user_repository_fs: decode")
	}
	return &u, nil
}

func (r *UserRepositoryFS) GetByEmailAndProvider(ctx context.Context, email string, provider userdom.Provider) (*userdom.User, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("user_repository_fs: firestore client is nil")
	}

	snap, err := r.col().Doc(userDocID(email, provider)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, userdom.ErrNotFound
		}
		return nil, errors.Wrap(err, "user_repository_fs: get")
	}

	var u userdom.User
	if err := snap.DataTo(&u); err != nil {
		return nil, errors.Wrap(err, "user_repository_fs: decode")
	}
	return &u, nil
}

func (r *UserRepositoryFS) Create(ctx context.Context, u *userdom.User) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}
	if u == nil || strings.TrimSpace(u.Email) == "" {
		return errors.New("user_repository_fs: user email is required")
	}

	// Create (not Set) so a concurrent duplicate sign-up loses cleanly.
	_, err := r.col().Doc(userDocID(u.Email, u.Provider)).Create(ctx, u)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return userdom.ErrAlreadyExists
		}
		return errors.Wrap(err, "user_repository_fs: create")
	}
	return nil
}

// UpdateAvatarURL sets the avatar reference on every account registered
// under email (the avatar belongs to the shopper, not the provider).
func (r *UserRepositoryFS) UpdateAvatarURL(ctx context.Context, email, avatarURL string) error {
	if r == nil || r.Client == nil {
		return errors.New("user_repository_fs: firestore client is nil")
	}

	addr := strings.ToLower(strings.TrimSpace(email))
	it := r.col().Where("email", "==", addr).Documents(ctx)
	defer it.Stop()

	updated := 0
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Wrap(err, "user_repository_fs: query")
		}

		if _, err := snap.Ref.Update(ctx, []firestore.Update{
			{Path: "avatarUrl", Value: strings.TrimSpace(avatarURL)},
		}); err != nil {
			return errors.Wrap(err, "user_repository_fs: update avatar")
		}
		updated++
	}

	if updated == 0 {
		return userdom.ErrNotFound
	}
	return nil
}
