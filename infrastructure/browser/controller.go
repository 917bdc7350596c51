package browser

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"ipo_automation/domain/entities"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Config controls how the browser is launched
type Config struct {
	Headless bool
	SlowMo   float64
	// NavigationTimeout bounds Goto and GoBack, in milliseconds
	NavigationTimeout float64
}

// DefaultConfig returns a visible browser with a small slow-mo, matching how
// the portal is usually watched while it runs
func DefaultConfig() Config {
	return Config{
		Headless:          false,
		SlowMo:            100,
		NavigationTimeout: 60000,
	}
}

// Session owns the playwright driver, browser and context
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	cfg     Config
	logger  logrus.FieldLogger

	pagesMutex sync.Mutex
	pages      []playwright.Page
}

// Launch - starts playwright and a Chromium browser
func Launch(cfg Config, logger logrus.FieldLogger) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(cfg.SlowMo),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--disable-infobars",
			"--disable-notifications",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
		UserAgent:         playwright.String("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	return &Session{
		pw:      pw,
		browser: browser,
		context: bctx,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// NewPage - opens a tab. Each tab is driven by a single flow; tabs may be
// driven concurrently.
func (s *Session) NewPage() (*Page, error) {
	page, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		s.logger.WithField("message", dialog.Message()).Debug("accepting dialog")
		dialog.Accept()
	})

	s.pagesMutex.Lock()
	s.pages = append(s.pages, page)
	s.pagesMutex.Unlock()

	page.OnClose(func(closedPage playwright.Page) {
		s.pagesMutex.Lock()
		defer s.pagesMutex.Unlock()

		for i, p := range s.pages {
			if p == closedPage {
				s.pages = append(s.pages[:i], s.pages[i+1:]...)
				break
			}
		}
	})

	return &Page{page: page, cfg: s.cfg, logger: s.logger}, nil
}

// OpenPages - returns the number of open tabs
func (s *Session) OpenPages() int {
	s.pagesMutex.Lock()
	defer s.pagesMutex.Unlock()
	return len(s.pages)
}

// Close - closes the context, the browser and the driver. Errors caused by
// an already closed target are ignored.
func (s *Session) Close() error {
	var closeErr error

	s.logger.WithField("open_pages", s.OpenPages()).Info("closing browser session")

	if s.context != nil {
		if err := s.context.Close(); err != nil && !isClosedErr(err) {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		s.context = nil
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil && !isClosedErr(err) {
			closeErr = errors.Join(closeErr, fmt.Errorf("failed to close browser: %w", err))
		}
		s.browser = nil
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("failed to stop playwright: %w", err))
		}
		s.pw = nil
	}

	return closeErr
}

// isClosedErr - reports whether err means the page, context or browser is gone
func isClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, playwright.ErrTargetClosed) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "target closed") ||
		strings.Contains(errStr, "has been closed") ||
		strings.Contains(errStr, "browser has disconnected")
}

// classify - maps closed-target errors onto entities.ErrPageClosed
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isClosedErr(err) {
		return fmt.Errorf("%w: %v", entities.ErrPageClosed, err)
	}
	return err
}
