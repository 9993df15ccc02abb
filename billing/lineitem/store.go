package lineitem

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kiranalabs/lib-billing/billing"
)

var one = decimal.NewFromInt(1)

// Store is the authoritative ordered list of line items for one
// transaction-edit session. It is not safe for concurrent use; the
// owning session serializes access.
type Store struct {
	items []LineItem
}

// NewStore creates a store seeded with a single empty row, matching the
// initial state of a fresh transaction form.
func NewStore() *Store {
	return &Store{items: []LineItem{emptyRow()}}
}

func newLocalID() string {
	return uuid.NewString()
}

func emptyRow() LineItem {
	return LineItem{
		LocalID:  newLocalID(),
		Quantity: one,
	}
}

// AddRow appends a fresh empty row and returns it. When the trailing row
// is already an empty non-free row, no new row is created and that row is
// returned instead so focus lands on it.
func (s *Store) AddRow() LineItem {
	if last := len(s.items) - 1; last >= 0 {
		if item := s.items[last]; item.Empty() {
			return item
		}
	}

	row := emptyRow()
	s.items = append(s.items, row)

	return row
}

// Get returns the item with the given local id.
func (s *Store) Get(id string) (LineItem, bool) {
	for _, item := range s.items {
		if item.LocalID == id {
			return item, true
		}
	}

	return LineItem{}, false
}

// SetName updates the typed product text. Editing the name always clears
// the resolved ProductID: the row drops back to the typing state until a
// catalog entry is selected again.
func (s *Store) SetName(id, name string) (LineItem, bool) {
	return s.mutate(id, func(item *LineItem) {
		item.Name = name
		item.ProductID = ""

		if item.Free {
			item.Manual = true
		}

		item.recompute()
	})
}

// SetQuantity updates the quantity. Values below one are rejected and the
// item is returned unchanged.
func (s *Store) SetQuantity(id string, qty decimal.Decimal) (LineItem, bool) {
	return s.mutate(id, func(item *LineItem) {
		if qty.LessThan(one) {
			return
		}

		item.Quantity = qty

		if item.Free {
			item.Manual = true
		}

		item.recompute()
	})
}

// SetPrice updates the unit price. Negative values are rejected and the
// item is returned unchanged.
func (s *Store) SetPrice(id string, price decimal.Decimal) (LineItem, bool) {
	return s.mutate(id, func(item *LineItem) {
		if price.IsNegative() {
			return
		}

		item.UnitPrice = price
		item.HasPrice = true

		if item.Free {
			item.Manual = true
		}

		item.recompute()
	})
}

// UpdateField dispatches a raw field edit to the typed setters. Numeric
// values are parsed as decimals; a malformed number is an invalid-input
// error, while an out-of-range value follows the setter rejection rule
// (item returned unchanged).
func (s *Store) UpdateField(id string, field Field, value string) (LineItem, error) {
	switch field {
	case FieldName:
		item, ok := s.SetName(id, value)
		if !ok {
			return LineItem{}, billing.NewDomainError(billing.ErrorNotFound, "id", "line item not found")
		}

		return item, nil
	case FieldQuantity, FieldPrice:
		parsed, err := decimal.NewFromString(value)
		if err != nil {
			return LineItem{}, billing.WrapDomainError(billing.ErrorInvalidInput, string(field), "value is not a number", err)
		}

		var (
			item LineItem
			ok   bool
		)

		if field == FieldQuantity {
			item, ok = s.SetQuantity(id, parsed)
		} else {
			item, ok = s.SetPrice(id, parsed)
		}

		if !ok {
			return LineItem{}, billing.NewDomainError(billing.ErrorNotFound, "id", "line item not found")
		}

		return item, nil
	default:
		return LineItem{}, billing.NewDomainError(billing.ErrorInvalidInput, "field", "unknown field")
	}
}

// Select resolves the row to a catalog product: identity, display name,
// and unit price are taken from the selection and the amount recomputed.
func (s *Store) Select(id, productID, name string, price decimal.Decimal) (LineItem, bool) {
	return s.mutate(id, func(item *LineItem) {
		item.ProductID = productID
		item.Name = name
		item.UnitPrice = price
		item.HasPrice = true
		item.recompute()
	})
}

// RemoveRow deletes the row. Removing the sole row replaces it with a
// fresh empty row instead of leaving the list empty.
func (s *Store) RemoveRow(id string) bool {
	index := -1

	for i, item := range s.items {
		if item.LocalID == id {
			index = i
			break
		}
	}

	if index < 0 {
		return false
	}

	if len(s.items) == 1 {
		s.items = []LineItem{emptyRow()}
		return true
	}

	s.items = append(s.items[:index], s.items[index+1:]...)

	return true
}

// RemoveWhere deletes every row matching the predicate and returns the
// number removed. Used by the offer-exclusion cascade. The sole-row reset
// applies here too.
func (s *Store) RemoveWhere(match func(LineItem) bool) int {
	kept := s.items[:0]
	removed := 0

	for _, item := range s.items {
		if match(item) {
			removed++
			continue
		}

		kept = append(kept, item)
	}

	s.items = kept
	if len(s.items) == 0 {
		s.items = []LineItem{emptyRow()}
	}

	return removed
}

// ReplaceAll swaps the entire contents for a reconciled item list. Items
// without a LocalID (calculator-injected rows) are assigned one. An empty
// replacement seeds a fresh empty row.
func (s *Store) ReplaceAll(items []LineItem) {
	next := make([]LineItem, 0, len(items))

	for _, item := range items {
		if item.LocalID == "" {
			item.LocalID = newLocalID()
		}

		next = append(next, item)
	}

	if len(next) == 0 {
		next = []LineItem{emptyRow()}
	}

	s.items = next
}

// Items returns a copy of the ordered item list.
func (s *Store) Items() []LineItem {
	items := make([]LineItem, len(s.items))
	copy(items, s.items)

	return items
}

// Filled returns the rows carrying a non-blank product name.
func (s *Store) Filled() []LineItem {
	filled := make([]LineItem, 0, len(s.items))

	for _, item := range s.items {
		if item.Filled() {
			filled = append(filled, item)
		}
	}

	return filled
}

// Len returns the number of rows, empty ones included.
func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) mutate(id string, apply func(*LineItem)) (LineItem, bool) {
	for i := range s.items {
		if s.items[i].LocalID == id {
			apply(&s.items[i])
			return s.items[i], true
		}
	}

	return LineItem{}, false
}
