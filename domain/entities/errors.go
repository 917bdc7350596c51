package entities

import "errors"

var (
	// ErrPageClosed means the page or its browser went away mid-step
	ErrPageClosed = errors.New("page closed")
	// ErrMissingCredentials is returned when username or password is unset
	ErrMissingCredentials = errors.New("MEROSHARE_USERNAME and MEROSHARE_PASSWORD must be set")
)
