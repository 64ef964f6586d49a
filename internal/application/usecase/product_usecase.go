package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	productdom "storefront/internal/domain/product"
)

var (
	ErrProductInvalidArgument = errors.New("product_usecase: invalid argument")
)

// ReviewInput is a review submission before validation.
type ReviewInput struct {
	Rating        int
	Comment       string
	ReviewerName  string
	ReviewerEmail string
}

// ProductUsecase serves the stored product catalog and its reviews.
type ProductUsecase struct {
	repo  productdom.Repository
	clock Clock
}

func NewProductUsecase(repo productdom.Repository) *ProductUsecase {
	return &ProductUsecase{repo: repo, clock: systemClock{}}
}

func NewProductUsecaseWithClock(repo productdom.Repository, clock Clock) *ProductUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &ProductUsecase{repo: repo, clock: clock}
}

// List returns a page of products plus the total count.
func (uc *ProductUsecase) List(ctx context.Context, limit, skip int) ([]productdom.Product, int, error) {
	if limit <= 0 {
		limit = 30
	}
	if skip < 0 {
		skip = 0
	}
	return uc.repo.List(ctx, limit, skip)
}

// Get returns the product or product.ErrNotFound.
func (uc *ProductUsecase) Get(ctx context.Context, id int) (*productdom.Product, error) {
	if id <= 0 {
		return nil, ErrProductInvalidArgument
	}
	return uc.repo.GetByID(ctx, id)
}

// AddReview appends a review to the product and persists the product
// with its recomputed aggregate rating. Duplicate reviewer emails are
// rejected by the domain before anything is written.
func (uc *ProductUsecase) AddReview(ctx context.Context, productID int, in ReviewInput) (*productdom.Product, error) {
	if productID <= 0 {
		return nil, ErrProductInvalidArgument
	}

	p, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	review := productdom.Review{
		ID:            uuid.NewString(),
		Rating:        in.Rating,
		Comment:       strings.TrimSpace(in.Comment),
		ReviewerName:  strings.TrimSpace(in.ReviewerName),
		ReviewerEmail: strings.TrimSpace(in.ReviewerEmail),
		Date:          uc.clock.Now(),
	}
	if err := p.AddReview(review); err != nil {
		return nil, err
	}

	if err := uc.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
