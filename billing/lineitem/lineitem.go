package lineitem

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Field identifies a user-editable line item field.
type Field string

const (
	// FieldName is the typed product text.
	FieldName Field = "name"
	// FieldQuantity is the item quantity.
	FieldQuantity Field = "qty"
	// FieldPrice is the unit price.
	FieldPrice Field = "price"
)

// LineItem is one editable row of a transaction.
//
// Lifecycle: created by an explicit add-row action or injected by a
// calculator response (free items); mutated by user edits or calculator
// merges; destroyed by explicit removal or by offer-exclusion cascade.
type LineItem struct {
	// LocalID is a session-scoped stable identity; it survives calculator
	// merges that echo it back.
	LocalID string `json:"id"`
	// ProductID is the catalog identity. Empty while the user is still
	// typing an unresolved name.
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"price"`
	// HasPrice distinguishes an explicitly set zero price from a blank
	// price box.
	HasPrice bool            `json:"hasPrice"`
	Amount   decimal.Decimal `json:"amount"`
	// Free marks a calculator-injected zero-price reward row.
	Free bool `json:"isFree"`
	// Manual is set when the user edits a calculator-owned free row.
	Manual bool `json:"manual,omitempty"`
	// OfferID links a free row to the offer that injected it; the row is
	// removed as a unit with its offer.
	OfferID string `json:"offerId,omitempty"`
}

// Filled reports whether the row carries a non-blank product name.
func (i LineItem) Filled() bool {
	return strings.TrimSpace(i.Name) != ""
}

// Empty reports whether the row is a blank user row.
func (i LineItem) Empty() bool {
	return !i.Filled() && !i.Free
}

// recompute refreshes the derived amount from quantity and unit price.
func (i *LineItem) recompute() {
	i.Amount = i.Quantity.Mul(i.UnitPrice)
}
