package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("user: not found")
	ErrAlreadyExists   = errors.New("user: already exists with this email and provider")
	ErrInvalidUser     = errors.New("user: invalid")
	ErrInvalidProvider = errors.New("user: invalid provider")
)

// Provider names the sign-up path an account was created through.
type Provider string

const (
	ProviderEmail  Provider = "email"  // local credential (password)
	ProviderGoogle Provider = "google" // federated sign-in
)

// ParseProvider validates the wire value.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.TrimSpace(s)) {
	case ProviderEmail:
		return ProviderEmail, nil
	case ProviderGoogle:
		return ProviderGoogle, nil
	}
	return "", ErrInvalidProvider
}

// User is a shopper account. Email is the primary key; the same email
// may exist once per provider.
type User struct {
	Email        string    `json:"email" firestore:"email"`
	Name         string    `json:"name" firestore:"name"`
	Phone        string    `json:"phone" firestore:"phone"`
	Provider     Provider  `json:"provider" firestore:"provider"`
	PasswordHash string    `json:"-" firestore:"passwordHash"`
	GoogleID     string    `json:"-" firestore:"googleId"`
	AvatarURL    string    `json:"avatarUrl,omitempty" firestore:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}

// New validates and builds a user. passwordHash is required for the
// email provider, googleID for the google provider.
func New(email, name, phone string, provider Provider, passwordHash, googleID string, now time.Time) (*User, error) {
	addr := strings.TrimSpace(email)
	if _, err := mail.ParseAddress(addr); err != nil {
		return nil, ErrInvalidUser
	}

	switch provider {
	case ProviderEmail:
		if strings.TrimSpace(passwordHash) == "" {
			return nil, ErrInvalidUser
		}
		googleID = ""
	case ProviderGoogle:
		if strings.TrimSpace(googleID) == "" {
			return nil, ErrInvalidUser
		}
		passwordHash = ""
	default:
		return nil, ErrInvalidProvider
	}

	return &User{
		Email:        strings.ToLower(addr),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Provider:     provider,
		PasswordHash: passwordHash,
		GoogleID:     googleID,
		CreatedAt:    now,
	}, nil
}
