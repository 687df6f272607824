package itemset

import (
	"errors"
	"fmt"
)

// ParseError reports a raw item value that could not be interpreted.
// Row and Column are zero-based positions in the rows passed to Load.
type ParseError struct {
	Row    int
	Column int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse item %q at row %d, column %d: %v", e.Value, e.Row+1, e.Column+1, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
