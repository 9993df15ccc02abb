// Package catalog resolves partially-typed product text against the
// product master and recommends unit prices from transaction history.
//
// The Client fetches the catalog and per-product history from the trading
// service; the Resolver works on an in-memory snapshot so row-level
// lookups never block on the network.
package catalog
