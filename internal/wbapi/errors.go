package wbapi

import (
	"errors"
	"fmt"
)

// StructuralError reports a required field absent or wrong shape in a raw
// API response. It aborts the current transformation and is never retried
// internally.
type StructuralError struct {
	Endpoint string
	Reason   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error in %s response: %s", e.Endpoint, e.Reason)
}

func structuralErrorf(endpoint, format string, args ...interface{}) *StructuralError {
	return &StructuralError{
		Endpoint: endpoint,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// IsStructural reports whether err is a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
