package session

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/kiranalabs/lib-billing/billing"
	"github.com/kiranalabs/lib-billing/billing/lineitem"
	"github.com/kiranalabs/lib-billing/billing/log"
	"github.com/kiranalabs/lib-billing/billing/party"
	"github.com/kiranalabs/lib-billing/billing/trading"
)

// legacyFreeRate marks free rows written before the explicit free flag:
// a 0.01 rate with a zero line total.
var legacyFreeRate = decimal.New(1, -2)

// Submit validates the session, builds the transaction payload, and
// persists it (create, or update when the session was loaded from an
// existing transaction). On success the session is terminal; on failure
// it stays editable for retry.
func (s *Session) Submit(ctx context.Context) (trading.Transaction, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return trading.Transaction{}, billing.NewDomainError(billing.ErrorSessionClosed, "", "session is closed")
	}

	if s.cfg.Transactions == nil {
		s.mu.Unlock()
		return trading.Transaction{}, billing.NewDomainError(billing.ErrorSubmissionFailed, "", "no transaction service configured")
	}

	filled, err := s.validateLocked()
	if err != nil {
		s.mu.Unlock()
		s.emit(Event{Kind: KindNotice, Severity: SeverityError, Message: err.Error()})

		return trading.Transaction{}, err
	}

	payload := s.buildPayloadLocked(filled)
	editMode, editingID := s.editMode, s.editingID
	service := s.cfg.Transactions

	s.mu.Unlock()

	var record trading.Transaction

	if editMode {
		record, err = service.UpdateTransaction(ctx, editingID, payload)
	} else {
		record, err = service.CreateTransaction(ctx, payload)
	}

	if err != nil {
		// Surfaced verbatim; the form stays editable and no data is lost.
		s.logger.Log(ctx, log.LevelError, "transaction save failed", log.Err(err))
		s.emit(Event{Kind: KindNotice, Severity: SeverityError, Message: submissionMessage(err)})

		return trading.Transaction{}, err
	}

	message := "Transaction Saved!"
	if editMode {
		message = "Transaction Updated!"
	}

	s.emit(Event{Kind: KindNotice, Severity: SeverityInfo, Message: message})
	s.Close()

	return record, nil
}

func (s *Session) buildPayloadLocked(filled []lineitem.LineItem) trading.Payload {
	products := make([]trading.PayloadProduct, 0, len(filled))

	for _, item := range filled {
		products = append(products, trading.PayloadProduct{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Price:      item.UnitPrice,
			Amount:     item.Amount,
			Free:       item.Free,
			LegacyFree: item.Free,
		})
	}

	var partyID *string

	partyName := "Walk-in Customer"

	if s.customer != nil {
		partyName = s.customer.Name

		if !s.customer.IsWalkIn() {
			id := s.customer.ID
			partyID = &id
		}
	}

	offers := make([]trading.PayloadOffer, 0, len(s.applied))

	for _, o := range s.applied {
		name := o.Description
		if name == "" {
			name = "Offer"
		}

		offers = append(offers, trading.PayloadOffer{
			OfferID:        o.ID,
			OfferName:      name,
			DiscountAmount: o.Value,
		})
	}

	return trading.Payload{
		PartyID:       partyID,
		PartyName:     partyName,
		Date:          s.date,
		Type:          s.cfg.Type,
		Products:      products,
		SubTotal:      s.totals.Sub,
		Discount:      s.totals.Disc,
		TotalAmount:   s.totals.Total,
		PaidAmount:    s.paidAmount,
		PaymentMode:   s.paymentMode,
		Notes:         s.notes,
		AppliedOffers: offers,
	}
}

// LoadTransaction switches the session into edit mode, seeding the store
// from a persisted record. Free rows are detected from either free flag
// or from the legacy 0.01-rate convention.
func (s *Session) LoadTransaction(t trading.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return billing.NewDomainError(billing.ErrorSessionClosed, "", "session is closed")
	}

	if t.ID == "" {
		return billing.NewDomainError(billing.ErrorInvalidInput, "id", "transaction id is required")
	}

	s.editMode = true
	s.editingID = t.ID

	if t.Date != "" {
		s.date = t.Date
	}

	if t.PartyID != "" {
		p := party.Party{ID: t.PartyID, Name: t.Party}
		s.customer = &p
	} else {
		p := party.WalkIn(t.Party)
		s.customer = &p
	}

	items := make([]lineitem.LineItem, 0, len(t.Details))

	for _, d := range t.Details {
		free := d.Free || d.LegacyFree || (d.Rate.Equal(legacyFreeRate) && d.Total.IsZero())

		items = append(items, lineitem.LineItem{
			ProductID: d.ProductID,
			Name:      d.Name,
			Quantity:  d.Quantity,
			UnitPrice: d.Rate,
			HasPrice:  true,
			Amount:    d.Total,
			Free:      free,
		})
	}

	s.store.ReplaceAll(items)
	s.paidAmount = t.PaidAmount
	s.markDirtyLocked()

	return nil
}

// submissionMessage keeps the calculator/trading error text when it is a
// domain error, falling back to a generic message otherwise.
func submissionMessage(err error) string {
	var domainErr billing.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return "Failed to save"
}
