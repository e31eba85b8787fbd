package errors

import (
	"errors"
	"fmt"
)

// ErrProviderUnavailable marks a third-party integration that is switched off or unreachable.
var ErrProviderUnavailable = errors.New("provider unavailable")

// ProviderError names the integration and the operation that needed it.
type ProviderError struct {
	Provider string
	Op       string
}

func (e *ProviderError) Error() string {
	switch {
	case e.Op != "" && e.Provider != "":
		return fmt.Sprintf("%s: %s is not configured", e.Op, e.Provider)
	case e.Provider != "":
		return e.Provider + " is not configured"
	default:
		return ErrProviderUnavailable.Error()
	}
}

func (e *ProviderError) Unwrap() error { return ErrProviderUnavailable }

func Unavailable(provider, op string) error {
	return &ProviderError{Provider: provider, Op: op}
}

// ProviderOf returns the provider name carried anywhere in err's chain.
func ProviderOf(err error) (string, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Provider, true
	}
	return "", false
}
