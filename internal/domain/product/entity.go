package product

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("product: not found")
	ErrInvalidReview   = errors.New("product: invalid review")
	ErrDuplicateReview = errors.New("product: reviewer already reviewed this product")
)

// Category is one entry of the catalog's category index.
type Category struct {
	Slug string `json:"slug" firestore:"slug"`
	Name string `json:"name" firestore:"name"`
}

// Review is one shopper's review of a product. Append-only; a given
// (product, reviewer email) pair is unique.
type Review struct {
	ID            string    `json:"id" firestore:"id"`
	Rating        int       `json:"rating" firestore:"rating"`
	Comment       string    `json:"comment" firestore:"comment"`
	ReviewerName  string    `json:"reviewerName" firestore:"reviewerName"`
	ReviewerEmail string    `json:"reviewerEmail" firestore:"reviewerEmail"`
	Date          time.Time `json:"date" firestore:"date"`
}

// Product is a catalog item. Identity and display fields are owned by
// the catalog; Rating is the arithmetic mean of all review ratings and
// is recomputed whenever a review is appended.
type Product struct {
	ID          int      `json:"id" firestore:"id"`
	Title       string   `json:"title" firestore:"title"`
	Description string   `json:"description" firestore:"description"`
	Price       float64  `json:"price" firestore:"price"`
	Category    string   `json:"category" firestore:"category"`
	Rating      float64  `json:"rating" firestore:"rating"`
	Thumbnail   string   `json:"thumbnail" firestore:"thumbnail"`
	Reviews     []Review `json:"reviews" firestore:"reviews"`
}

// AddReview appends r and recomputes the aggregate rating as the mean
// of all review ratings. A second review from the same reviewer email is
// rejected with ErrDuplicateReview and nothing is mutated.
func (p *Product) AddReview(r Review) error {
	if p == nil {
		return ErrNotFound
	}
	if err := validateReview(r); err != nil {
		return err
	}

	addr := normalizeEmail(r.ReviewerEmail)
	for _, existing := range p.Reviews {
		if normalizeEmail(existing.ReviewerEmail) == addr {
			return ErrDuplicateReview
		}
	}

	r.ReviewerEmail = addr
	r.ReviewerName = strings.TrimSpace(r.ReviewerName)
	p.Reviews = append(p.Reviews, r)

	sum := 0
	for _, rv := range p.Reviews {
		sum += rv.Rating
	}
	p.Rating = float64(sum) / float64(len(p.Reviews))
	return nil
}

func validateReview(r Review) error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidReview
	}
	if strings.TrimSpace(r.Comment) == "" {
		return ErrInvalidReview
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(r.ReviewerEmail)); err != nil {
		return ErrInvalidReview
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
