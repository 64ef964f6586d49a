package cart

import "context"

// Repository is the persistence port for Cart.
//
// Storage (Firestore):
// - collection: carts
// - docId: email (the docId is the source of truth)
// - fields: email, items(array), createdAt, updatedAt
type Repository interface {
	// GetByEmail returns (nil, nil) when no cart exists for email
	// (the application layer treats nil as "empty cart").
	GetByEmail(ctx context.Context, email string) (*Cart, error)

	// Upsert overwrites the full cart document (create-or-replace,
	// never a merge).
	Upsert(ctx context.Context, c *Cart) error
}
