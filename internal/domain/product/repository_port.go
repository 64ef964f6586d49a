package product

import "context"

// Repository is the persistence port for Product.
//
// Storage (Firestore):
// - collection: products
// - docId: strconv(product.ID)
// - reviews embedded as an array field (append-only)
type Repository interface {
	// List returns up to limit products starting at offset skip, in
	// ascending id order, plus the total number of products.
	List(ctx context.Context, limit, skip int) ([]Product, int, error)

	// GetByID returns the product or ErrNotFound.
	GetByID(ctx context.Context, id int) (*Product, error)

	// Save overwrites the full product document (used after a review
	// append recomputes the aggregate rating).
	Save(ctx context.Context, p *Product) error
}
