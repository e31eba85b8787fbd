// Package aggregates declares the write boundaries that keep money and ratings consistent:
// the contribution ledger, vendor reviews and booking status changes. Each boundary locks
// the rows it touches and commits in one transaction.
package aggregates
