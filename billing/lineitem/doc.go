// Package lineitem holds the editable, ordered list of bill line items
// for one transaction-edit session.
//
// The Store is the authoritative local state the calculation engine
// synchronizes against: user edits mutate it directly, calculator merges
// replace it wholesale via ReplaceAll, and every non-free item keeps the
// invariant Amount = Quantity * UnitPrice.
package lineitem
