package render

import (
	"fmt"

	"github.com/zoobzio/dynq/internal/types"
)

// UnsupportedSyntaxError indicates a construct the dialect cannot express.
type UnsupportedSyntaxError struct {
	Feature string
	Dialect string
	Hint    string
}

func (e UnsupportedSyntaxError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

// Is matches types.ErrUnsupportedSyntax.
func (e UnsupportedSyntaxError) Is(target error) bool {
	return target == types.ErrUnsupportedSyntax
}

// NewUnsupportedSyntaxError creates a new unsupported syntax error.
func NewUnsupportedSyntaxError(dialect, feature string, hint ...string) error {
	err := UnsupportedSyntaxError{Feature: feature, Dialect: dialect}
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	return err
}
