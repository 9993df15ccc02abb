package session

import (
	"github.com/kiranalabs/lib-billing/billing"
	"github.com/kiranalabs/lib-billing/billing/calc"
	"github.com/kiranalabs/lib-billing/billing/lineitem"
	"github.com/kiranalabs/lib-billing/billing/log"
	"github.com/kiranalabs/lib-billing/billing/offer"
)

// applyResponseLocked merges a calculation response into the session:
// totals and offer lists are replaced with the calculator's values and
// the store contents swapped for the reconciled item list, preserving
// local identity where the response echoes it.
func (s *Session) applyResponseLocked(response calc.Response) {
	prior := make(map[string]lineitem.LineItem, s.store.Len())
	for _, item := range s.store.Items() {
		prior[item.LocalID] = item
	}

	items := make([]lineitem.LineItem, 0, len(response.Products))

	for _, p := range response.Products {
		item := lineitem.LineItem{
			LocalID:   p.ID,
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.Price,
			Amount:    p.Quantity.Mul(p.Price),
			Free:      p.Free,
			OfferID:   p.OfferID,
			HasPrice:  p.Free || !p.Price.IsZero(),
		}

		// The calculator may inject free rewards it cannot map to a
		// catalog id itself; backfill by exact name match.
		if item.Free && item.ProductID == "" && s.cfg.Resolver != nil {
			if product, ok := s.cfg.Resolver.MatchName(item.Name); ok {
				item.ProductID = product.ID
			}
		}

		if echoed, ok := prior[item.LocalID]; ok {
			item.HasPrice = echoed.HasPrice || item.HasPrice
			item.Manual = echoed.Manual

			// The fingerprint fence covers (productID, qty, price) only. A
			// name typed into an unresolved row since the request went out is
			// invisible to it, so the echoed name must not roll it back.
			if item.ProductID == "" && !item.Free {
				item.Name = echoed.Name
			}
		}

		items = append(items, item)
	}

	s.store.ReplaceAll(items)
	s.totals = response.Totals
	s.applied = response.AppliedOffers
	s.available = response.AvailableOffers
}

// ExcludeOffer turns an applied offer off for this session. The
// exclusion is recorded and any line item belonging to the offer is
// deleted immediately, before the next calculator round trip, so the UI
// updates instantly; authoritative totals follow one debounce cycle
// later.
func (s *Session) ExcludeOffer(offerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return billing.NewDomainError(billing.ErrorSessionClosed, "", "session is closed")
	}

	if offerID == "" {
		return billing.NewDomainError(billing.ErrorInvalidInput, "offerId", "offer id is required")
	}

	s.excludeOfferLocked(offerID)

	return nil
}

func (s *Session) excludeOfferLocked(offerID string) {
	s.exclusions.Add(offerID)

	removed := s.store.RemoveWhere(func(item lineitem.LineItem) bool {
		return item.OfferID == offerID
	})

	if removed > 0 {
		s.logger.Log(s.ctx, log.LevelDebug, "offer excluded, free items removed",
			log.String("offer_id", offerID),
			log.Int("removed", removed),
		)
	}

	s.markDirtyLocked()
}

// ReincludeOffer lifts a manual exclusion. The offer and its free item
// reappear only after the next successful calculation; there is no
// optimistic re-add because eligibility must be reconfirmed server-side.
func (s *Session) ReincludeOffer(offerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return billing.NewDomainError(billing.ErrorSessionClosed, "", "session is closed")
	}

	if !s.exclusions.Contains(offerID) {
		return billing.NewDomainError(billing.ErrorNotFound, "offerId", "offer is not excluded")
	}

	s.exclusions.Remove(offerID)
	s.markDirtyLocked()

	return nil
}

// ExcludedOffers returns the ids the user has manually turned off.
func (s *Session) ExcludedOffers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exclusions.IDs()
}

// AppliedOffers returns the offers applied by the last calculation.
func (s *Session) AppliedOffers() []offer.Applied {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]offer.Applied(nil), s.applied...)
}

// AvailableOffers returns offers the calculator deems eligible but not
// applied.
func (s *Session) AvailableOffers() []offer.Available {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]offer.Available(nil), s.available...)
}

// Totals returns the current amount summary.
func (s *Session) Totals() calc.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.totals
}

// Items returns a copy of the current line items.
func (s *Session) Items() []lineitem.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Items()
}
