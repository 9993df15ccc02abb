package catalog

import "github.com/shopspring/decimal"

// Product is one catalog entry from the product master.
type Product struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	UnitID string          `json:"unitId,omitempty"`
}

// HistoryRow is one past transaction of a product.
type HistoryRow struct {
	Date     string          `json:"date"`
	Party    string          `json:"party"`
	Quantity decimal.Decimal `json:"qty"`
	Price    decimal.Decimal `json:"price"`
}

// History is the per-product transaction history returned by the trading
// service. RecommendedPrice is derived from recent sales and may be
// absent for products without history.
type History struct {
	RecommendedPrice *decimal.Decimal `json:"recommendedPrice,omitempty"`
	Sales            []HistoryRow     `json:"sales"`
	Purchases        []HistoryRow     `json:"purchases"`
}
