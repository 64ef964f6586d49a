package catalog

import (
	"errors"
	"sort"
	"strings"

	productdom "storefront/internal/domain/product"
)

var (
	ErrInvalidPriceRange = errors.New("catalog: invalid price range")
	ErrUnknownSortKey    = errors.New("catalog: unknown sort key")
)

// SortKey selects the ordering of a filtered view.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "priceLowToHigh"
	SortPriceDesc SortKey = "priceHighToLow"
	SortRating    SortKey = "rating"
)

// ParseSortKey maps the wire value to a SortKey. Empty means default.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.TrimSpace(s)) {
	case "", SortDefault:
		return SortDefault, nil
	case SortPriceAsc:
		return SortPriceAsc, nil
	case SortPriceDesc:
		return SortPriceDesc, nil
	case SortRating:
		return SortRating, nil
	}
	return SortDefault, ErrUnknownSortKey
}

// FilterConfig is a validated filter/sort configuration.
// Construct via NewFilterConfig; an out-of-order or negative price range
// never makes it into a usable config.
type FilterConfig struct {
	MinPrice   float64
	MaxPrice   float64
	Categories []string // empty means "all"
	Sort       SortKey
}

// NewFilterConfig validates bounds at construction time: min <= max and
// both non-negative. This is the enforcement point for the range
// invariant; Apply assumes its config came through here.
func NewFilterConfig(minPrice, maxPrice float64, categories []string, sortKey SortKey) (FilterConfig, error) {
	if minPrice < 0 || maxPrice < 0 || minPrice > maxPrice {
		return FilterConfig{}, ErrInvalidPriceRange
	}
	switch sortKey {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortRating:
	default:
		return FilterConfig{}, ErrUnknownSortKey
	}

	cats := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c != "" {
			cats = append(cats, c)
		}
	}

	return FilterConfig{
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Categories: cats,
		Sort:       sortKey,
	}, nil
}

// Apply produces the filtered, ordered view of products under cfg.
// Pure: the input slice is never mutated and the output is always a
// subset of the input. Sorting is stable, so equal keys keep their
// original relative order and SortDefault preserves input order.
func Apply(products []productdom.Product, cfg FilterConfig) []productdom.Product {
	out := make([]productdom.Product, 0, len(products))

	selected := map[string]bool{}
	for _, c := range cfg.Categories {
		selected[c] = true
	}

	for _, p := range products {
		if len(selected) > 0 && !selected[p.Category] {
			continue
		}
		if p.Price < cfg.MinPrice || p.Price > cfg.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	switch cfg.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}

	return out
}
