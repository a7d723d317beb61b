package strategy

import "errors"

var (
	// ErrUnknownArea is returned when an area view is requested for an area
	// that is not visible.
	ErrUnknownArea = errors.New("unknown area")

	// ErrUnitPanicked wraps a panic raised while building one view or one
	// domain section.
	ErrUnitPanicked = errors.New("builder panicked")
)
