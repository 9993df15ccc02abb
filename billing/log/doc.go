// Package log defines the billing logging interface and typed logging fields.
//
// Adapters (such as the zap package) implement Logger so engine code can keep
// logging calls consistent across backends.
package log
