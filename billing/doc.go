// Package billing provides the shared primitives of the retail billing
// engine: the domain error taxonomy, context helpers, and environment
// configuration utilities.
//
// Higher-level subpackages build on these:
//   - lineitem holds the editable line-item store for one transaction.
//   - catalog resolves typed product text against the product master.
//   - offer tracks discount offers and user exclusions.
//   - calc talks to the remote pricing/discount calculator.
//   - session drives the calculation/reconciliation state machine.
package billing
