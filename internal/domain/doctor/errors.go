package doctor

import "errors"

// ErrNotFound marks a doctor ID with no matching row.
var ErrNotFound = errors.New("doctor not found")
