package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Error is returned when one or more configuration groups could not be loaded. It names every
// invalid group of both documents, not only the first one found.
type Error struct {
	Groups []string
	err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration in %s: %v", strings.Join(e.Groups, ", "), e.err)
}

// Unwrap returns the error of each invalid group.
func (e *Error) Unwrap() []error {
	return multierr.Errors(e.err)
}

// errorBuilder collects group failures so that every group is checked before failing.
type errorBuilder struct {
	groups []string
	errs   error
}

func (b *errorBuilder) check(group string, err error) {
	if err == nil {
		return
	}
	b.groups = append(b.groups, group)
	b.errs = multierr.Append(b.errs, errors.Wrapf(err, "error found at section `%s`", group))
}

func (b *errorBuilder) build() error {
	if len(b.groups) == 0 {
		return nil
	}
	return &Error{Groups: b.groups, err: b.errs}
}
