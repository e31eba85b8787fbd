package aggregates

import "strings"

// Contract names an aggregate and the tables it writes. LockOrder lists tables in the
// order their rows are locked so concurrent writers cannot deadlock each other.
type Contract struct {
	Name      string
	Tables    []string
	LockOrder []string
	Notes     string
}

// Aggregate is implemented by every write boundary.
type Aggregate interface {
	Contract() Contract
}

// Op returns the qualified operation name used in errors, logs and metrics.
func (c Contract) Op(method string) string {
	method = strings.TrimSpace(method)
	if method == "" {
		return c.Name
	}
	return c.Name + "." + method
}

// Writes reports whether the aggregate owns writes to table.
func (c Contract) Writes(table string) bool {
	for _, t := range c.Tables {
		if t == table {
			return true
		}
	}
	return false
}
