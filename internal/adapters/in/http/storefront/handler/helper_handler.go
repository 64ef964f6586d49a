// Package storefrontHandler serves the shopper-facing endpoints:
// catalog browsing, search, and the session cart.
package storefrontHandler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	catalogdom "storefront/internal/domain/catalog"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not found")
}

// defaultMaxPrice mirrors the price slider's upper bound.
const defaultMaxPrice = 1000

// filterConfigFromQuery builds a validated FilterConfig from the
// request's minPrice/maxPrice/categories/sort query parameters.
func filterConfigFromQuery(r *http.Request) (catalogdom.FilterConfig, error) {
	minPrice := floatQuery(r, "minPrice", 0)
	maxPrice := floatQuery(r, "maxPrice", defaultMaxPrice)

	var categories []string
	if raw := strings.TrimSpace(r.URL.Query().Get("categories")); raw != "" {
		categories = strings.Split(raw, ",")
	}

	sortKey, err := catalogdom.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		return catalogdom.FilterConfig{}, err
	}

	return catalogdom.NewFilterConfig(minPrice, maxPrice, categories, sortKey)
}

func floatQuery(r *http.Request, key string, def float64) float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}

func intQuery(r *http.Request, key string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
