package firestore

import (
	"context"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "storefront/internal/domain/product"
)

// ProductRepositoryFS implements product.Repository using Firestore.
//
// Collection design:
// - collection: products
// - docId: strconv(product.ID)
// - reviews embedded as an array field
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("products")
}

// List pages through products in ascending id order and reports the
// collection total.
func (r *ProductRepositoryFS) List(ctx context.Context, limit, skip int) ([]productdom.Product, int, error) {
	if r == nil || r.Client == nil {
		return nil, 0, errors.New("product_repository_fs: firestore client is nil")
	}

	total, err := r.count(ctx)
	if err != nil {
		return nil, 0, err
	}

	it := r.col().OrderBy("id", firestore.Asc).Offset(skip).Limit(limit).Documents(ctx)
	defer it.Stop()

	out := make([]productdom.Product, 0, limit)
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Wrap(err, "product_repository_fs: iterate")
		}

		var p productdom.Product
		if err := snap.DataTo(&p); err != nil {
			return nil, 0, errors.Wrap(err, "product_repository_fs: decode")
		}
		out = append(out, p)
	}

	return out, total, nil
}

// GetByID returns the product or product.ErrNotFound.
func (r *ProductRepositoryFS) GetByID(ctx context.Context, id int) (*productdom.Product, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("product_repository_fs: firestore client is nil")
	}

	snap, err := r.col().Doc(strconv.Itoa(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, productdom.ErrNotFound
		}
		return nil, errors.Wrap(err, "product_repository_fs: get")
	}

	var p productdom.Product
	if err := snap.DataTo(&p); err != nil {
		return nil, errors.Wrap(err, "product_repository_fs: decode")
	}
	p.ID = mustAtoi(snap.Ref.ID, p.ID)
	return &p, nil
}

// Save overwrites the full product document.
func (r *ProductRepositoryFS) Save(ctx context.Context, p *productdom.Product) error {
	if r == nil || r.Client == nil {
		return errors.New("product_repository_fs: firestore client is nil")
	}
	if p == nil || p.ID <= 0 {
		return errors.New("product_repository_fs: product id is required")
	}

	_, err := r.col().Doc(strconv.Itoa(p.ID)).Set(ctx, p)
	return errors.Wrap(err, "product_repository_fs: set")
}

// count walks doc refs only (no field payload).
func (r *ProductRepositoryFS) count(ctx context.Context) (int, error) {
	it := r.col().Select().Documents(ctx)
	defer it.Stop()

	n := 0
	for {
		_, err := it.Next()
		if err == iterator.Done {
			return n, nil
		}
		if err != nil {
			return 0, errors.Wrap(err, "product_repository_fs: count")
		}
		n++
	}
}

func mustAtoi(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
