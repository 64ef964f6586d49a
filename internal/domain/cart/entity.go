package cart

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	productdom "storefront/internal/domain/product"
)

var (
	ErrInvalidCart     = errors.New("cart: invalid")
	ErrInvalidQuantity = errors.New("cart: quantity must be >= 1")
)

// LineItem is one row in a cart: a single product and its quantity.
// Title/Price/Thumbnail are denormalized from the product at add time so
// the cart stays renderable even if the catalog entry changes later.
type LineItem struct {
	ProductID int     `json:"id" firestore:"id"`
	Title     string  `json:"title" firestore:"title"`
	Price     float64 `json:"price" firestore:"price"`
	Thumbnail string  `json:"thumbnail" firestore:"thumbnail"`
	Quantity  int     `json:"quantity" firestore:"quantity"`
}

// NewLineItem builds a fully-specified line item from a product.
// This is the only sanctioned way to turn a product into a cart row;
// there is no partial/optional-field construction.
func NewLineItem(p productdom.Product, qty int) (LineItem, error) {
	if p.ID <= 0 {
		return LineItem{}, ErrInvalidCart
	}
	if qty < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	return LineItem{
		ProductID: p.ID,
		Title:     strings.TrimSpace(p.Title),
		Price:     p.Price,
		Thumbnail: strings.TrimSpace(p.Thumbnail),
		Quantity:  qty,
	}, nil
}

// Cart is one shopper's cart.
//   - docId = email (the owning identity's address)
//   - Items: insertion-ordered, at most one line item per product id
type Cart struct {
	Email     string     `json:"email" firestore:"email"`
	Items     []LineItem `json:"items" firestore:"items"`
	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

// New creates a cart owned by email. items can be nil (treated as empty).
func New(email string, items []LineItem, now time.Time) (*Cart, error) {
	addr := strings.TrimSpace(email)
	if _, err := mail.ParseAddress(addr); err != nil {
		return nil, ErrInvalidCart
	}

	return &Cart{
		Email:     addr,
		Items:     dedupe(items),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Add appends a new line item for the product.
// If a line item with the same product id already exists the call is a
// no-op: first add wins, the stored quantity is not bumped. Returns true
// when the cart changed.
func (c *Cart) Add(p productdom.Product, qty int, now time.Time) (bool, error) {
	if c == nil {
		return false, ErrInvalidCart
	}

	item, err := NewLineItem(p, qty)
	if err != nil {
		return false, err
	}

	if c.indexOf(item.ProductID) >= 0 {
		return false, nil
	}

	c.Items = append(c.Items, item)
	c.touch(now)
	return true, nil
}

// Remove deletes the line item for productID. No-op when absent.
// Returns true when the cart changed.
func (c *Cart) Remove(productID int, now time.Time) bool {
	if c == nil {
		return false
	}

	idx := c.indexOf(productID)
	if idx < 0 {
		return false
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.touch(now)
	return true
}

// SetQuantity overwrites the quantity for productID.
// qty < 1 is rejected before anything is touched. An absent product id
// is a no-op. Returns true when the cart changed.
func (c *Cart) SetQuantity(productID, qty int, now time.Time) (bool, error) {
	if c == nil {
		return false, ErrInvalidCart
	}
	if qty < 1 {
		return false, ErrInvalidQuantity
	}

	idx := c.indexOf(productID)
	if idx < 0 {
		return false, nil
	}
	if c.Items[idx].Quantity == qty {
		return false, nil
	}

	c.Items[idx].Quantity = qty
	c.touch(now)
	return true, nil
}

// Replace swaps the whole item collection (used when the remote copy of
// the cart lands). Rows that violate the line-item invariants are dropped.
func (c *Cart) Replace(items []LineItem, now time.Time) {
	if c == nil {
		return
	}
	c.Items = dedupe(items)
	c.touch(now)
}

// TotalPrice is the sum of price x quantity over all line items,
// recomputed on every call. Decimal arithmetic keeps repeated float
// prices from drifting.
func (c *Cart) TotalPrice() float64 {
	if c == nil {
		return 0
	}
	total := decimal.Zero
	for _, it := range c.Items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	f, _ := total.Float64()
	return f
}

// ItemCount is the number of distinct line items (not the quantity sum);
// this is what the cart badge shows.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

func (c *Cart) indexOf(productID int) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
}

// dedupe keeps the first occurrence per product id, preserving input
// order, and drops rows that violate the line-item invariants.
func dedupe(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	seen := map[int]bool{}
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			continue
		}
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		out = append(out, it)
	}
	return out
}
