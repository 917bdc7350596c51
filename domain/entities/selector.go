package entities

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Visibility controls what a locate probe waits for.
type Visibility int

const (
	// MustBeVisible waits until the element is rendered and visible.
	MustBeVisible Visibility = iota
	// MayBeHidden accepts any element attached to the document.
	MayBeHidden
)

// SelectorCandidate is one entry of an ordered selector priority list
type SelectorCandidate struct {
	Selector string        `json:"selector" yaml:"selector"`
	Timeout  time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Selectors builds a candidate list that uses the request's default timeout
func Selectors(selectors ...string) []SelectorCandidate {
	candidates := make([]SelectorCandidate, 0, len(selectors))
	for _, s := range selectors {
		candidates = append(candidates, SelectorCandidate{Selector: s})
	}
	return candidates
}

// LocateRequest describes a single resolution pass over a candidate list.
// It is built per call and discarded afterwards.
type LocateRequest struct {
	Candidates          []SelectorCandidate
	PerCandidateTimeout time.Duration
	OverallTimeout      time.Duration
	Visibility          Visibility
}

// LocateResult is either Found (Element and MatchedSelector set) or
// NotFound (Tried lists every probed selector in order).
type LocateResult struct {
	Found           bool
	Element         Element
	MatchedSelector string
	MatchedIndex    int
	Tried           []string
	Elapsed         time.Duration
	BudgetExhausted bool
}

// Element is a resolved handle on the page that steps can act on
type Element interface {
	Click() error
	Fill(value string) error
	SelectOption(label string) error
	Check() error
	Text() (string, error)
}

// UnmarshalYAML accepts either a bare selector string or a mapping with
// selector and timeout keys
func (c *SelectorCandidate) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		c.Selector = value.Value
		c.Timeout = 0
		return nil
	}
	type plain SelectorCandidate
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = SelectorCandidate(p)
	return nil
}
