package dump

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input data: missing required dump entry
// fields, a non-string mtime value or a malformed device slug. It is always
// fatal to the operation that detected it.
type ValidationError struct {
	Message string
	// Fields lists every offending field, in declared field order, when the
	// error concerns dump entry fields.
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
	}
	return e.Message
}

// FormatError reports a dump payload that cannot be parsed or is missing a
// required top level section. It aborts the whole load.
type FormatError struct {
	Message string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
