package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// CartUsecase serves the cart persistence endpoints: read the full
// line-item collection for an email, or replace it wholesale. There is
// no merge and no versioning; concurrent sessions for the same identity
// are last-write-wins.
type CartUsecase struct {
	repo  cartdom.Repository
	clock Clock
}

func NewCartUsecase(repo cartdom.Repository) *CartUsecase {
	return &CartUsecase{repo: repo, clock: systemClock{}}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{repo: repo, clock: clock}
}

// Get returns the cart for email. A missing record comes back as an
// empty cart, not an error: a new identity's cart exists from the
// moment it is first asked for.
func (uc *CartUsecase) Get(ctx context.Context, email string) (*cartdom.Cart, error) {
	addr := strings.TrimSpace(email)
	if addr == "" {
		return nil, ErrCartInvalidArgument
	}

	c, err := uc.repo.GetByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return cartdom.New(addr, nil, uc.clock.Now())
	}
	return c, nil
}

// ReplaceAll overwrites the full cart for email with items
// (create-or-replace upsert).
func (uc *CartUsecase) ReplaceAll(ctx context.Context, email string, items []cartdom.LineItem) (*cartdom.Cart, error) {
	addr := strings.TrimSpace(email)
	if addr == "" {
		return nil, ErrCartInvalidArgument
	}

	now := uc.clock.Now()

	c, err := uc.repo.GetByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c, err = cartdom.New(addr, items, now)
		if err != nil {
			return nil, ErrCartInvalidArgument
		}
	} else {
		c.Replace(items, now)
	}

	if err := uc.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
