package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNoMatch signals that nothing can be rendered for the request; callers
	// render the template's no-results fragment instead.
	ErrNoMatch = errors.New("no match")

	// ErrEmptyCollection is returned when a record set or category forest that
	// must be rendered is empty.
	ErrEmptyCollection = fmt.Errorf("empty collection: %w", ErrNoMatch)

	// ErrMalformedTag marks a tag declaration that cannot be split into a
	// name and parameters. Such tags are dropped from the catalog.
	ErrMalformedTag = errors.New("malformed tag declaration")
)
