package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ipo_automation/domain/interfaces"
)

const defaultScreenshotDir = "test-results"

var unsafeLabel = regexp.MustCompile(`[^a-z0-9_-]+`)

type screenshotStore struct {
	dir string
	now func() time.Time
}

// NewScreenshotStore - creates a store writing under dir, creating it if
// needed
func NewScreenshotStore(dir string) (interfaces.ScreenshotStore, error) {
	if dir == "" {
		dir = defaultScreenshotDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return &screenshotStore{dir: dir, now: time.Now}, nil
}

// Path - returns a timestamped PNG path for label
func (s *screenshotStore) Path(label string) (string, error) {
	name := unsafeLabel.ReplaceAllString(strings.ToLower(label), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "screenshot"
	}
	file := fmt.Sprintf("%s-%s.png", name, s.now().Format("20060102-150405"))
	return filepath.Join(s.dir, file), nil
}
