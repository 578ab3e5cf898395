package tariff

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTariff marks schema-level tariff defects: missing required
	// fields, wrong schedule dimensions, incomplete demand sections.
	ErrInvalidTariff = errors.New("invalid tariff")

	// ErrMalformedDocument marks I/O or JSON syntax failures, distinct from
	// schema validity so callers can message them differently.
	ErrMalformedDocument = errors.New("malformed tariff document")
)

// invalidf wraps a formatted message with ErrInvalidTariff so callers can
// errors.Is against it.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTariff, fmt.Sprintf(format, args...))
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, args...))
}
