package interfaces

import (
	"context"
	"time"

	"ipo_automation/domain/entities"
)

// Page is the capability a browser runtime offers for a single tab
type Page interface {
	// Probe resolves selector to its first match, waiting up to timeout
	// for it to become visible (or attached when visibility is MayBeHidden)
	Probe(ctx context.Context, selector string, timeout time.Duration, visibility entities.Visibility) (entities.Element, error)

	// URL returns the current location
	URL() string

	// IsClosed reports whether the page is gone
	IsClosed() bool

	// BodyText returns the rendered text of the document body
	BodyText(ctx context.Context) (string, error)

	// GoBack navigates to the previous history entry
	GoBack(ctx context.Context) error

	// Pause lets the page settle for d or until ctx is done
	Pause(ctx context.Context, d time.Duration)

	// Screenshot writes a full-page PNG to path
	Screenshot(ctx context.Context, path string) error

	// FormControls lists the inputs and selects of the current document
	FormControls(ctx context.Context) ([]entities.PageElement, error)
}
