// Package trading persists transactions through the trading service and
// models the submission payload and persisted record shapes.
package trading

import "github.com/shopspring/decimal"

// Type is the transaction kind. Purchases do not participate in discount
// rules; sales do.
type Type string

const (
	// TypeSale is a customer sale; totals come from the calculator.
	TypeSale Type = "SALE"
	// TypePurchase is a supplier purchase; totals are summed locally.
	TypePurchase Type = "PURCHASE"
)

// UsesDiscountRules reports whether this transaction type is priced by
// the remote calculator.
func (t Type) UsesDiscountRules() bool {
	return t == TypeSale
}

// PayloadProduct is one submitted line.
type PayloadProduct struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Free      bool            `json:"isFree"`
	// LegacyFree mirrors Free under the older field name still read by
	// report consumers.
	LegacyFree bool `json:"free"`
}

// PayloadOffer is one applied offer recorded with the transaction.
type PayloadOffer struct {
	OfferID        string          `json:"offerId"`
	OfferName      string          `json:"offerName"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
}

// Payload is the transaction create/update request body.
type Payload struct {
	// PartyID is nil for walk-in customers.
	PartyID       *string          `json:"partyId"`
	PartyName     string           `json:"partyName"`
	Date          string           `json:"date"`
	Type          Type             `json:"type"`
	Products      []PayloadProduct `json:"products"`
	SubTotal      decimal.Decimal  `json:"subTotal"`
	Discount      decimal.Decimal  `json:"discount"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	PaidAmount    decimal.Decimal  `json:"paidAmount"`
	PaymentMode   string           `json:"paymentMode,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	AppliedOffers []PayloadOffer   `json:"appliedOffers"`
}

// Detail is one persisted transaction row as the trading service returns it.
type Detail struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"qty"`
	Rate      decimal.Decimal `json:"rate"`
	Total     decimal.Decimal `json:"total"`
	Free      bool            `json:"isFree"`
	// LegacyFree is the older free flag; rows written before the rename
	// carry only this one.
	LegacyFree bool `json:"free"`
}

// Transaction is the persisted record with its server-assigned id.
type Transaction struct {
	ID         string          `json:"id"`
	PartyID    string          `json:"partyId,omitempty"`
	Party      string          `json:"party"`
	Date       string          `json:"date"`
	Type       Type            `json:"type"`
	Details    []Detail        `json:"details"`
	SubTotal   decimal.Decimal `json:"subTotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"totalAmount"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
}
