package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kiranalabs/lib-billing/billing"
	"github.com/kiranalabs/lib-billing/billing/log"
)

// HistoryLookup fetches per-product history; satisfied by *Client.
type HistoryLookup interface {
	ProductHistory(ctx context.Context, productID string) (History, error)
}

// Resolver matches typed product text against an in-memory catalog
// snapshot and recommends a unit price for a selected product.
type Resolver struct {
	products []Product
	byID     map[string]Product
	byName   map[string]Product
	history  HistoryLookup
	logger   log.Logger
}

// NewResolver builds a resolver over a catalog snapshot. The snapshot is
// re-sorted alphabetically so search results are stable regardless of
// input order. history may be nil, in which case recommended prices
// always fall back to the catalog default.
func NewResolver(products []Product, history HistoryLookup, logger log.Logger) *Resolver {
	snapshot := make([]Product, len(products))
	copy(snapshot, products)

	sort.Slice(snapshot, func(i, j int) bool {
		return strings.ToLower(snapshot[i].Name) < strings.ToLower(snapshot[j].Name)
	})

	byID := make(map[string]Product, len(snapshot))
	byName := make(map[string]Product, len(snapshot))

	for _, p := range snapshot {
		byID[p.ID] = p
		byName[normalizeName(p.Name)] = p
	}

	if logger == nil {
		logger = &log.NopLogger{}
	}

	return &Resolver{
		products: snapshot,
		byID:     byID,
		byName:   byName,
		history:  history,
		logger:   logger,
	}
}

// Search returns catalog entries whose name contains the query,
// case-insensitive, in alphabetical order. A blank query returns the
// whole catalog.
func (r *Resolver) Search(query string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.all()
	}

	matches := make([]Product, 0)

	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			matches = append(matches, p)
		}
	}

	return matches
}

// ByID returns the catalog entry with the given id.
func (r *Resolver) ByID(id string) (Product, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// MatchName returns the catalog entry whose name equals the given text,
// compared case-insensitively after trimming. Used to backfill product
// ids on calculator-injected free items.
func (r *Resolver) MatchName(name string) (Product, bool) {
	p, ok := r.byName[normalizeName(name)]
	return p, ok
}

// RecommendedPrice returns the price to prefill when the product is
// selected: the history-derived recommendation when available, otherwise
// the catalog default. A failed history lookup is a recoverable
// resolution error; it is logged and the catalog price returned.
func (r *Resolver) RecommendedPrice(ctx context.Context, product Product) decimal.Decimal {
	if r.history == nil {
		return product.Price
	}

	history, err := r.history.ProductHistory(ctx, product.ID)
	if err != nil {
		r.logger.Log(ctx, log.LevelWarn, "price recommendation lookup failed, using catalog price",
			log.String("product_id", product.ID),
			log.String("code", string(billing.ErrorResolutionFailed)),
			log.Err(err),
		)

		return product.Price
	}

	if history.RecommendedPrice == nil {
		return product.Price
	}

	return *history.RecommendedPrice
}

// Len returns the catalog size.
func (r *Resolver) Len() int {
	return len(r.products)
}

func (r *Resolver) all() []Product {
	products := make([]Product, len(r.products))
	copy(products, r.products)

	return products
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
