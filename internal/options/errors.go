package options

import "errors"

// ErrInvalidOverride is returned when the user options cannot be merged onto
// the defaults or do not fit the schema.
var ErrInvalidOverride = errors.New("invalid strategy options")
