package channel

import "errors"

// Sentinel kinds for channel errors.
var (
	ErrAlreadyConnected = errors.New("channel already connected")
	ErrConnect          = errors.New("channel connect failed")
	ErrMissingLocation  = errors.New("hazard alert missing location")
)
