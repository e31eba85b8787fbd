// Package aggregates implements the ledger, review and booking boundaries on GORM. Writes
// run through executeWrite, which maps driver errors to aggregate codes and retries
// serialization failures.
package aggregates
