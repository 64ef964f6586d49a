package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	userdom "storefront/internal/domain/user"
)

var (
	ErrUserInvalidArgument = errors.New("user_usecase: invalid argument")
	ErrPasswordRequired    = errors.New("user_usecase: password is required for email sign-up")
	ErrGoogleIDRequired    = errors.New("user_usecase: google id is required for google sign-in")
)

// WelcomeMailer sends the post-sign-up welcome email. Delivery is
// best-effort; the usecase only logs failures.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, email, name string) error
}

// AvatarStore persists an uploaded avatar image and returns its public
// URL.
type AvatarStore interface {
	Put(ctx context.Context, email string, contentType string, data []byte) (string, error)
}

// SignUpInput is the raw sign-up request.
type SignUpInput struct {
	Name     string
	Phone    string
	Email    string
	Password string // email provider only
	Provider string // "email" | "google"
	GoogleID string // google provider only
}

// UserUsecase handles account registration and lookup.
type UserUsecase struct {
	repo    userdom.Repository
	mailer  WelcomeMailer // optional
	avatars AvatarStore   // optional
	clock   Clock
	log     *logrus.Entry
}

func NewUserUsecase(repo userdom.Repository, mailer WelcomeMailer, avatars AvatarStore, log *logrus.Entry) *UserUsecase {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &UserUsecase{
		repo:    repo,
		mailer:  mailer,
		avatars: avatars,
		clock:   systemClock{},
		log:     log.WithField("component", "user_usecase"),
	}
}

// SignUp registers a new account. Validation happens before any write:
// provider must be known, the credential matching the provider must be
// present, and the (email, provider) pair must be free.
func (uc *UserUsecase) SignUp(ctx context.Context, in SignUpInput) (*userdom.User, error) {
	provider, err := userdom.ParseProvider(in.Provider)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, ErrUserInvalidArgument
	}

	existing, err := uc.repo.GetByEmailAndProvider(ctx, email, provider)
	if err != nil && !errors.Is(err, userdom.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, userdom.ErrAlreadyExists
	}

	var passwordHash, googleID string
	switch provider {
	case userdom.ProviderEmail:
		if in.Password == "" {
			return nil, ErrPasswordRequired
		}
		hash, herr := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if herr != nil {
			return nil, herr
		}
		passwordHash = string(hash)
	case userdom.ProviderGoogle:
		if strings.TrimSpace(in.GoogleID) == "" {
			return nil, ErrGoogleIDRequired
		}
		googleID = strings.TrimSpace(in.GoogleID)
	}

	u, err := userdom.New(email, in.Name, in.Phone, provider, passwordHash, googleID, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if uc.mailer != nil {
		if merr := uc.mailer.SendWelcome(ctx, u.Email, u.Name); merr != nil {
			uc.log.WithField("email", u.Email).WithError(merr).Warn("welcome email failed")
		}
	}

	return u, nil
}

// GetByEmail returns the account or user.ErrNotFound.
func (uc *UserUsecase) GetByEmail(ctx context.Context, email string) (*userdom.User, error) {
	addr := strings.TrimSpace(email)
	if addr == "" {
		return nil, ErrUserInvalidArgument
	}
	return uc.repo.GetByEmail(ctx, addr)
}

// SetAvatar stores the uploaded image and records its URL on the user.
func (uc *UserUsecase) SetAvatar(ctx context.Context, email, contentType string, data []byte) (string, error) {
	addr := strings.TrimSpace(email)
	if addr == "" || len(data) == 0 {
		return "", ErrUserInvalidArgument
	}
	if uc.avatars == nil {
		return "", errors.New("user_usecase: avatar store is not configured")
	}

	if _, err := uc.repo.GetByEmail(ctx, addr); err != nil {
		return "", err
	}

	url, err := uc.avatars.Put(ctx, addr, contentType, data)
	if err != nil {
		return "", err
	}
	if err := uc.repo.UpdateAvatarURL(ctx, addr, url); err != nil {
		return "", err
	}
	return url, nil
}
