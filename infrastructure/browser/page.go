package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Page adapts a playwright page to interfaces.Page
type Page struct {
	page   playwright.Page
	cfg    Config
	logger logrus.FieldLogger
}

var _ interfaces.Page = (*Page)(nil)

// Goto - navigates to url and waits for the DOM to load
func (p *Page) Goto(ctx context.Context, url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(p.cfg.NavigationTimeout),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, classify(err))
	}
	return nil
}

// Probe - waits for the first match of selector
func (p *Page) Probe(ctx context.Context, selector string, timeout time.Duration, visibility entities.Visibility) (entities.Element, error) {
	if p.page.IsClosed() {
		return nil, entities.ErrPageClosed
	}

	state := playwright.WaitForSelectorStateVisible
	if visibility == entities.MayBeHidden {
		state = playwright.WaitForSelectorStateAttached
	}

	// playwright treats a zero timeout as "wait forever"
	ms := float64(timeout.Milliseconds())
	if ms < 1 {
		ms = 1
	}

	locator := p.page.Locator(selector).First()
	err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: playwright.Float(ms),
	})
	if err != nil {
		return nil, classify(err)
	}
	return &element{locator: locator}, nil
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) IsClosed() bool {
	return p.page.IsClosed()
}

// BodyText - returns the rendered text of the body
func (p *Page) BodyText(ctx context.Context) (string, error) {
	text, err := p.page.Locator("body").InnerText()
	if err != nil {
		return "", classify(err)
	}
	return text, nil
}

// GoBack - navigates one history entry back
func (p *Page) GoBack(ctx context.Context) error {
	_, err := p.page.GoBack(playwright.PageGoBackOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(p.cfg.NavigationTimeout),
	})
	return classify(err)
}

// Pause - waits for d unless ctx is done first
func (p *Page) Pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Screenshot - takes a full page screenshot
func (p *Page) Screenshot(ctx context.Context, path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return classify(err)
}

// FormControls - lists every input and select with its identifying attributes
func (p *Page) FormControls(ctx context.Context) ([]entities.PageElement, error) {
	locators, err := p.page.Locator("input, select").All()
	if err != nil {
		return nil, classify(err)
	}

	controls := make([]entities.PageElement, 0, len(locators))
	for _, loc := range locators {
		tag, err := loc.Evaluate("el => el.tagName.toLowerCase()", nil)
		if err != nil {
			return nil, classify(err)
		}

		control := entities.PageElement{
			Tag:         getString(tag),
			Type:        attribute(loc, "type"),
			Name:        attribute(loc, "name"),
			ID:          attribute(loc, "id"),
			Placeholder: attribute(loc, "placeholder"),
			Class:       attribute(loc, "class"),
		}
		if control.Tag == "select" {
			if options, err := loc.Locator("option").AllInnerTexts(); err == nil {
				for _, o := range options {
					if o = strings.TrimSpace(o); o != "" {
						control.Options = append(control.Options, o)
					}
				}
			}
		}
		controls = append(controls, control)
	}
	return controls, nil
}

// attribute - reads an attribute, empty when absent
func attribute(loc playwright.Locator, name string) string {
	v, err := loc.GetAttribute(name)
	if err != nil {
		return ""
	}
	return v
}

// getString - extracts string value from an evaluate result
func getString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// element adapts a resolved playwright locator to entities.Element
type element struct {
	locator playwright.Locator
}

func (e *element) Click() error {
	return classify(e.locator.Click())
}

func (e *element) Fill(value string) error {
	if err := e.locator.Clear(); err != nil {
		return classify(err)
	}
	if value == "" {
		return nil
	}
	return classify(e.locator.Fill(value))
}

// SelectOption - picks by visible label, then by option value
func (e *element) SelectOption(label string) error {
	_, err := e.locator.SelectOption(playwright.SelectOptionValues{Labels: &[]string{label}})
	if err == nil {
		return nil
	}
	if _, valueErr := e.locator.SelectOption(playwright.SelectOptionValues{Values: &[]string{label}}); valueErr == nil {
		return nil
	}
	return classify(err)
}

func (e *element) Check() error {
	return classify(e.locator.Check())
}

func (e *element) Text() (string, error) {
	text, err := e.locator.InnerText()
	if err != nil {
		return "", classify(err)
	}
	return text, nil
}
