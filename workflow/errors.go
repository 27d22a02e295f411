package workflow

import (
	"fmt"
	"strings"
)

// ParseError means the raw document could not be read at all. It is fatal and
// happens before any ledger row exists; nothing gets persisted.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError means extraction produced structurally incomplete
// candidates (no usable customer or vehicle). Like ParseError it is fatal and
// pre-ledger: validation failure and persistence failure are different error
// classes with different blast radius.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "estimate validation failed: " + strings.Join(e.Problems, "; ")
}
