package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kiranalabs/lib-billing/billing"
	"github.com/kiranalabs/lib-billing/billing/calc"
	"github.com/kiranalabs/lib-billing/billing/log"
)

// fingerprintLocked derives a key over exactly the state that affects
// calculation: the ordered (productID, quantity, unitPrice) tuples plus
// customer, date, and the serialized exclusion set.
func (s *Session) fingerprintLocked() string {
	var b strings.Builder

	for _, item := range s.store.Items() {
		b.WriteString(item.ProductID)
		b.WriteByte('-')
		b.WriteString(item.Quantity.String())
		b.WriteByte('-')
		b.WriteString(item.UnitPrice.String())
		b.WriteByte(',')
	}

	b.WriteByte('|')

	if s.customer != nil {
		b.WriteString(s.customer.ID)
	}

	b.WriteByte('|')
	b.WriteString(s.date)
	b.WriteByte('|')
	b.WriteString(strings.Join(s.exclusions.IDs(), ","))

	return b.String()
}

// markDirtyLocked is the entry point of the sync state machine, called
// after every calculation-affecting mutation with the session lock held.
func (s *Session) markDirtyLocked() {
	fingerprint := s.fingerprintLocked()
	if fingerprint == s.lastFingerprint {
		return
	}

	s.lastFingerprint = fingerprint

	// Purchases have no discount rules: totals are summed locally and no
	// remote call is made.
	if !s.cfg.Type.UsesDiscountRules() {
		s.recomputeLocalTotalsLocked()
		s.emit(Event{Kind: KindRecalculated})

		return
	}

	// Edits are coalesced, not queued: every mutation cancels the pending
	// timer before (possibly) starting a new one.
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	// While a typed name is still unresolved the user is mid-selection;
	// calculation is deferred until the row resolves or empties.
	if s.hasIncompleteNameLocked() {
		return
	}

	s.timer = time.AfterFunc(s.cfg.Debounce, s.recalculate)
}

// scheduleLocked restarts the debounce unconditionally. Used after a
// merge changed the fingerprint so the calculator reconfirms the merged
// state.
func (s *Session) scheduleLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(s.cfg.Debounce, s.recalculate)
}

func (s *Session) hasIncompleteNameLocked() bool {
	for _, item := range s.store.Items() {
		if item.Filled() && item.ProductID == "" && !item.Free {
			return true
		}
	}

	return false
}

func (s *Session) recomputeLocalTotalsLocked() {
	sub := decimal.Zero

	for _, item := range s.store.Items() {
		sub = sub.Add(item.Quantity.Mul(item.UnitPrice))
	}

	s.totals = calc.Totals{Sub: sub, Disc: decimal.Zero, Total: sub}
}

// recalculate fires on the debounce timer. It snapshots the fingerprint,
// issues one calculation request, and applies the response only if the
// request is still the most recent one and the fingerprint still matches
// current state. A response failing either check is discarded: out-of-date
// results never overwrite newer edits.
func (s *Session) recalculate() {
	s.mu.Lock()

	if s.closed || s.hasIncompleteNameLocked() {
		s.mu.Unlock()
		return
	}

	fingerprint := s.fingerprintLocked()
	requestID := uuid.NewString()
	s.pendingRequestID = requestID
	request := s.buildRequestLocked()
	ctx := s.ctx

	s.mu.Unlock()

	response, err := s.cfg.Calculator.Calculate(ctx, request)
	if err != nil {
		// Transient: prior totals and items stay on display untouched.
		s.logger.Log(ctx, log.LevelWarn, "calculation failed, keeping prior totals",
			log.String("code", string(billing.ErrorCalculationFailed)),
			log.Err(err),
		)

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.pendingRequestID != requestID || s.fingerprintLocked() != fingerprint {
		s.logger.Log(ctx, log.LevelDebug, "stale calculation response discarded",
			log.String("code", string(billing.ErrorStaleResponse)),
			log.String("request_id", requestID),
		)

		return
	}

	s.pendingRequestID = ""
	s.applyResponseLocked(response)
	s.emit(Event{Kind: KindRecalculated})

	// Merging can itself change the fingerprint (free rows injected or
	// dropped); resync so the calculator confirms the merged state. The
	// calculator is idempotent, so this converges after one round.
	merged := s.fingerprintLocked()
	if merged != fingerprint {
		s.lastFingerprint = merged
		s.scheduleLocked()
	}
}

func (s *Session) buildRequestLocked() calc.Request {
	items := s.store.Items()
	products := make([]calc.Item, 0, len(items))

	for _, item := range items {
		products = append(products, calc.Item{
			ID:        item.LocalID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
			ProductID: item.ProductID,
			Free:      item.Free,
			OfferID:   item.OfferID,
		})
	}

	var customerID *string

	if s.customer != nil && !s.customer.IsWalkIn() {
		id := s.customer.ID
		customerID = &id
	}

	excluded := s.exclusions.IDs()
	if excluded == nil {
		excluded = []string{}
	}

	return calc.Request{
		Products:       products,
		CustomerID:     customerID,
		Date:           s.date,
		ExcludedOffers: excluded,
	}
}
