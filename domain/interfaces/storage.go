package interfaces

// ScreenshotStore hands out paths for failure screenshots
type ScreenshotStore interface {
	// Path returns a file path for a screenshot with the given label
	Path(label string) (string, error)
}
