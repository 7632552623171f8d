package metric

import "errors"

var (
	ErrInvalidDimension = errors.New("dimension must be one of function, company, location")
	ErrInvalidKind      = errors.New("metric must be one of on_time, completion, lost, leave")
	ErrInvalidMonth     = errors.New("month must be in YYYY-MM format")
	ErrSourceFailed     = errors.New("metric source request failed")
)
