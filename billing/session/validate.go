package session

import (
	"fmt"

	"github.com/kiranalabs/lib-billing/billing"
	"github.com/kiranalabs/lib-billing/billing/lineitem"
)

// Validate runs the pre-submit gate and returns the filled line items on
// success. The first failing rule short-circuits with a field-scoped
// validation error; nothing is partially submitted.
func (s *Session) Validate() ([]lineitem.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.validateLocked()
}

func (s *Session) validateLocked() ([]lineitem.LineItem, error) {
	if s.customer == nil {
		return nil, billing.NewDomainError(billing.ErrorValidationFailed, "party", "Please select a party.")
	}

	filled := s.store.Filled()
	if len(filled) == 0 {
		return nil, billing.NewDomainError(billing.ErrorValidationFailed, "products", "Please add at least one product.")
	}

	for _, item := range filled {
		if err := validateItem(item); err != nil {
			return nil, err
		}
	}

	return filled, nil
}

func validateItem(item lineitem.LineItem) error {
	if item.ProductID == "" && !item.Free {
		return billing.NewDomainError(billing.ErrorValidationFailed, "products",
			fmt.Sprintf("Product '%s' not found in list.", item.Name))
	}

	if !item.Quantity.IsPositive() {
		return billing.NewDomainError(billing.ErrorValidationFailed, "qty",
			fmt.Sprintf("Invalid quantity for '%s'.", item.Name))
	}

	if !item.Free && (!item.HasPrice || item.UnitPrice.IsNegative()) {
		return billing.NewDomainError(billing.ErrorValidationFailed, "price",
			fmt.Sprintf("Price missing for '%s'.", item.Name))
	}

	return nil
}
