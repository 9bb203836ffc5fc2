package projections

import "errors"

// ErrInvalidFilter is returned when a query parameter has an unsupported value.
var ErrInvalidFilter = errors.New("invalid filter")
