// Package offer models backend-evaluated discount offers and the
// session-scoped set of offers the user has manually turned off.
package offer

import "github.com/shopspring/decimal"

// Applied is an offer the calculator applied to the current items.
type Applied struct {
	ID          string          `json:"id"`
	Description string          `json:"desc"`
	Value       decimal.Decimal `json:"value"`
}

// Available is an offer the calculator deems eligible but not applied.
type Available struct {
	ID          string `json:"id"`
	Description string `json:"desc"`
}

// ExclusionSet tracks offers the user has manually removed for the
// current session. Exclusions persist across recalculations until
// explicitly cleared; insertion order is preserved so the serialized
// form is stable for fingerprinting.
type ExclusionSet struct {
	order []string
	seen  map[string]struct{}
}

// NewExclusionSet creates an empty exclusion set.
func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{seen: make(map[string]struct{})}
}

// Add records an offer id as excluded. Adding an id twice is a no-op.
func (s *ExclusionSet) Add(offerID string) {
	if offerID == "" {
		return
	}

	if _, ok := s.seen[offerID]; ok {
		return
	}

	s.seen[offerID] = struct{}{}
	s.order = append(s.order, offerID)
}

// Remove drops an offer id from the set.
func (s *ExclusionSet) Remove(offerID string) {
	if _, ok := s.seen[offerID]; !ok {
		return
	}

	delete(s.seen, offerID)

	for i, id := range s.order {
		if id == offerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether the offer id is excluded.
func (s *ExclusionSet) Contains(offerID string) bool {
	_, ok := s.seen[offerID]
	return ok
}

// IDs returns the excluded offer ids in insertion order.
func (s *ExclusionSet) IDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)

	return ids
}

// Len returns the number of excluded offers.
func (s *ExclusionSet) Len() int {
	return len(s.order)
}

// Clear empties the set.
func (s *ExclusionSet) Clear() {
	s.order = nil
	s.seen = make(map[string]struct{})
}
