// Package pagetest provides an in-memory interfaces.Page for exercising
// locator-backed workflow steps without a browser.
package pagetest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"ipo_automation/domain/entities"
)

// ErrProbeTimeout is returned when a selector does not resolve
var ErrProbeTimeout = errors.New("probe timeout")

// Action is a recorded element interaction
type Action struct {
	Selector string
	Verb     string
	Value    string
}

// Page is a synthetic document keyed by selector
type Page struct {
	mu       sync.Mutex
	url      string
	closed   bool
	body     string
	elements map[string]*Element
	history  []string
	controls []entities.PageElement

	probes  []string
	actions []Action
	pauses  []time.Duration

	// OnAction runs after every successful element action, with the page
	// lock released, so tests can model navigation or closure
	OnAction func(p *Page, a Action)
}

// Element is a synthetic control
type Element struct {
	page     *Page
	selector string

	Visible  bool
	Label    string
	Value    string
	Options  []string
	Checked  bool
	ClickErr error
}

// New - creates a page at url
func New(url string) *Page {
	return &Page{
		url:      url,
		elements: make(map[string]*Element),
	}
}

// Add registers a visible element under selector
func (p *Page) Add(selector string) *Element {
	return p.add(selector, true)
}

// AddHidden registers an attached but invisible element
func (p *Page) AddHidden(selector string) *Element {
	return p.add(selector, false)
}

func (p *Page) add(selector string, visible bool) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := &Element{page: p, selector: selector, Visible: visible}
	p.elements[selector] = el
	return el
}

// Remove drops the element registered under selector
func (p *Page) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

// Element returns the element registered under selector, or nil
func (p *Page) Element(selector string) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[selector]
}

// SetURL changes the current location, pushing the old one to history
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, p.url)
	p.url = url
}

// SetBody sets the text returned by BodyText
func (p *Page) SetBody(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.body = text
}

// SetControls sets what FormControls returns
func (p *Page) SetControls(controls []entities.PageElement) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.controls = controls
}

// Close marks the page closed; every later call fails
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Probes returns the selectors probed so far, in order
func (p *Page) Probes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.probes...)
}

// ResetProbes clears the probe trace
func (p *Page) ResetProbes() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes = nil
}

// Actions returns the recorded element actions
func (p *Page) Actions() []Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Action(nil), p.actions...)
}

// Pauses returns every settle wait requested
func (p *Page) Pauses() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.pauses...)
}

func (p *Page) Probe(ctx context.Context, selector string, timeout time.Duration, visibility entities.Visibility) (entities.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes = append(p.probes, selector)
	if p.closed {
		return nil, entities.ErrPageClosed
	}
	el, ok := p.elements[selector]
	if !ok || (visibility == entities.MustBeVisible && !el.Visible) {
		return nil, fmt.Errorf("%s after %s: %w", selector, timeout, ErrProbeTimeout)
	}
	return el, nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) BodyText(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", entities.ErrPageClosed
	}
	return p.body, nil
}

func (p *Page) GoBack(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return entities.ErrPageClosed
	}
	if n := len(p.history); n > 0 {
		p.url = p.history[n-1]
		p.history = p.history[:n-1]
	}
	return nil
}

func (p *Page) Pause(ctx context.Context, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses = append(p.pauses, d)
}

// Screenshot writes a placeholder file so callers can assert on its path
func (p *Page) Screenshot(ctx context.Context, path string) error {
	if p.IsClosed() {
		return entities.ErrPageClosed
	}
	return os.WriteFile(path, []byte("png"), 0644)
}

func (p *Page) FormControls(ctx context.Context) ([]entities.PageElement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, entities.ErrPageClosed
	}
	return append([]entities.PageElement(nil), p.controls...), nil
}

func (p *Page) record(a Action) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return entities.ErrPageClosed
	}
	p.actions = append(p.actions, a)
	hook := p.OnAction
	p.mu.Unlock()

	if hook != nil {
		hook(p, a)
	}
	return nil
}

func (e *Element) Click() error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	return e.page.record(Action{Selector: e.selector, Verb: "click"})
}

func (e *Element) Fill(value string) error {
	if err := e.page.record(Action{Selector: e.selector, Verb: "fill", Value: value}); err != nil {
		return err
	}
	e.page.mu.Lock()
	e.Value = value
	e.page.mu.Unlock()
	return nil
}

func (e *Element) SelectOption(label string) error {
	e.page.mu.Lock()
	found := false
	for _, o := range e.Options {
		if o == label {
			found = true
			break
		}
	}
	e.page.mu.Unlock()
	if !found {
		return fmt.Errorf("no option %q in %s", label, e.selector)
	}
	if err := e.page.record(Action{Selector: e.selector, Verb: "select", Value: label}); err != nil {
		return err
	}
	e.page.mu.Lock()
	e.Value = label
	e.page.mu.Unlock()
	return nil
}

func (e *Element) Check() error {
	if err := e.page.record(Action{Selector: e.selector, Verb: "check"}); err != nil {
		return err
	}
	e.page.mu.Lock()
	e.Checked = true
	e.page.mu.Unlock()
	return nil
}

func (e *Element) Text() (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if e.page.closed {
		return "", entities.ErrPageClosed
	}
	return e.Label, nil
}
