package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "storefront/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: email (docId is the source of truth)
// - fields: email, items(array), createdAt, updatedAt
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// GetByEmail returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) GetByEmail(ctx context.Context, email string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	addr := strings.TrimSpace(email)
	if addr == "" {
		return nil, errors.New("cart_repository_fs: email is empty")
	}

	snap, err := r.col().Doc(addr).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, errors.Wrap(err, "cart_repository_fs: get")
	}

	var doc cartDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrap(err, "cart_repository_fs: decode")
	}

	c := doc.toDomain()
	// docId is the source of truth even if the email field is missing
	c.Email = addr
	return c, nil
}

// Upsert overwrites the full doc by docId=cart.Email.
func (r *CartRepositoryFS) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}

	addr := strings.TrimSpace(c.Email)
	if addr == "" {
		return errors.New("cart_repository_fs: Upsert requires cart.Email as docId")
	}

	// Overwrite full doc (simple & predictable; the write is always a
	// full replacement, never a merge).
	_, err := r.col().Doc(addr).Set(ctx, cartDocFromDomain(c))
	return errors.Wrap(err, "cart_repository_fs: set")
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	Email     string        `firestore:"email"`
	Items     []cartItemDoc `firestore:"items"`
	CreatedAt time.Time     `firestore:"createdAt"`
	UpdatedAt time.Time     `firestore:"updatedAt"`
}

type cartItemDoc struct {
	ProductID int     `firestore:"id"`
	Title     string  `firestore:"title"`
	Price     float64 `firestore:"price"`
	Thumbnail string  `firestore:"thumbnail"`
	Quantity  int     `firestore:"quantity"`
}

func cartDocFromDomain(c *cartdom.Cart) cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			continue
		}
		items = append(items, cartItemDoc{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Thumbnail: it.Thumbnail,
			Quantity:  it.Quantity,
		})
	}
	return cartDoc{
		Email:     c.Email,
		Items:     items,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d cartDoc) toDomain() *cartdom.Cart {
	items := make([]cartdom.LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			continue
		}
		items = append(items, cartdom.LineItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Thumbnail: it.Thumbnail,
			Quantity:  it.Quantity,
		})
	}
	return &cartdom.Cart{
		Email:     d.Email,
		Items:     items,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
