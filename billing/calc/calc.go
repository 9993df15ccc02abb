// Package calc is the client for the remote pricing/discount calculator.
//
// The calculator is authoritative for sale totals and offer application;
// this package only moves the wire shapes and never evaluates discount
// rules locally.
package calc

import (
	"github.com/shopspring/decimal"

	"github.com/kiranalabs/lib-billing/billing/offer"
)

// Item is a line item on the calculation wire.
type Item struct {
	// ID echoes the session-local row id so merges can preserve identity.
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	ProductID string          `json:"productId,omitempty"`
	Free      bool            `json:"isFree"`
	OfferID   string          `json:"offerId,omitempty"`
}

// Totals is the calculator-derived amount summary.
type Totals struct {
	Sub   decimal.Decimal `json:"sub"`
	Disc  decimal.Decimal `json:"disc"`
	Total decimal.Decimal `json:"total"`
}

// Request carries the current editable state to the calculator.
type Request struct {
	Products []Item `json:"products"`
	// CustomerID is nil for walk-in customers.
	CustomerID     *string  `json:"customerId"`
	Date           string   `json:"date"`
	ExcludedOffers []string `json:"excludedOffers"`
}

// Response is the calculator verdict: the reconciled item list (free
// rewards included), totals, and offer status.
type Response struct {
	Products        []Item            `json:"products"`
	Totals          Totals            `json:"totals"`
	AppliedOffers   []offer.Applied   `json:"appliedOffers"`
	AvailableOffers []offer.Available `json:"availableOffers"`
}
