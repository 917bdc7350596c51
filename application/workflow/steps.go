package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ipo_automation/application/locator"
	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Step names, in chain order
const (
	StepSelectDepository  = "select-depository"
	StepFillCredentials   = "fill-credentials"
	StepSubmitLogin       = "submit-login"
	StepDetectLogin       = "detect-post-login-state"
	StepOpenASBA          = "open-asba"
	StepLocateApply       = "locate-apply-action"
	StepOpenShareDetails  = "open-share-details"
	StepVerifyTerms       = "verify-allotment-terms"
	StepReturnToASBA      = "return-to-asba"
	StepOpenApplication   = "open-application"
	StepFillApplication   = "fill-application-form"
	StepSubmitApplication = "submit-application"
	StepCheckStatus       = "check-final-status"
)

// Options tune waits used by the steps
type Options struct {
	// CandidateTimeout bounds each selector probe
	CandidateTimeout time.Duration
	// ReadyTimeout bounds the probes that wait for a view to render
	ReadyTimeout time.Duration
	// Settle is the pause after a click or fill
	Settle time.Duration
	// NavigationSettle is the pause after an action that changes view
	NavigationSettle time.Duration
}

// DefaultOptions returns the waits tuned against the live portal
func DefaultOptions() Options {
	return Options{
		CandidateTimeout: 1500 * time.Millisecond,
		ReadyTimeout:     10 * time.Second,
		Settle:           500 * time.Millisecond,
		NavigationSettle: 3 * time.Second,
	}
}

// Steps implements every workflow step on top of the locator
type Steps struct {
	locator *locator.Locator
	catalog Catalog
	opts    Options
	logger  logrus.FieldLogger
}

// NewSteps - creates workflow steps
func NewSteps(loc *locator.Locator, catalog Catalog, opts Options, logger logrus.FieldLogger) *Steps {
	return &Steps{
		locator: loc,
		catalog: catalog,
		opts:    opts,
		logger:  logger,
	}
}

func (s *Steps) locate(ctx context.Context, page interfaces.Page, candidates []entities.SelectorCandidate) entities.LocateResult {
	return s.locator.Locate(ctx, page, entities.LocateRequest{
		Candidates:          candidates,
		PerCandidateTimeout: s.opts.CandidateTimeout,
	})
}

// waitReady blocks until one of candidates renders. A miss is tolerated;
// the step's own locate decides whether the view is usable.
func (s *Steps) waitReady(ctx context.Context, page interfaces.Page, candidates []entities.SelectorCandidate) {
	res := s.locator.Locate(ctx, page, entities.LocateRequest{
		Candidates:          candidates,
		PerCandidateTimeout: s.opts.ReadyTimeout,
		OverallTimeout:      s.opts.ReadyTimeout,
		Visibility:          entities.MayBeHidden,
	})
	if !res.Found {
		s.logger.WithField("tried", res.Tried).Debug("view not ready, continuing")
	}
}

// missing converts an exhausted locate into a failure, separating page
// closure from a plain miss
func missing(page interfaces.Page, step, what string, res entities.LocateResult) entities.StepOutcome {
	if page.IsClosed() {
		return entities.Failed(step, entities.FailurePageUnavailable, fmt.Sprintf("page closed while looking for %s", what))
	}
	return entities.Failed(step, entities.FailureElementNotFound,
		fmt.Sprintf("could not find %s (tried %s)", what, strings.Join(res.Tried, ", ")))
}

// actionFailed converts an element action error into a failure
func actionFailed(page interfaces.Page, step, what string, err error) entities.StepOutcome {
	if errors.Is(err, entities.ErrPageClosed) || page.IsClosed() {
		return entities.Failed(step, entities.FailurePageUnavailable, fmt.Sprintf("page closed during %s: %v", what, err))
	}
	return entities.Failed(step, entities.FailureActionFailed, fmt.Sprintf("%s: %v", what, err))
}

// click locates the first candidate and clicks it
func (s *Steps) click(ctx context.Context, page interfaces.Page, step, what string, candidates []entities.SelectorCandidate) (entities.LocateResult, *entities.StepOutcome) {
	res := s.locate(ctx, page, candidates)
	if !res.Found {
		out := missing(page, step, what, res)
		return res, &out
	}
	if err := res.Element.Click(); err != nil {
		out := actionFailed(page, step, "click "+what, err)
		return res, &out
	}
	s.logger.WithFields(logrus.Fields{"step": step, "selector": res.MatchedSelector}).Infof("clicked %s", what)
	return res, nil
}

// fill locates the first candidate and replaces its value
func (s *Steps) fill(ctx context.Context, page interfaces.Page, step, what, value string, candidates []entities.SelectorCandidate) *entities.StepOutcome {
	res := s.locate(ctx, page, candidates)
	if !res.Found {
		out := missing(page, step, what, res)
		return &out
	}
	if err := res.Element.Fill(value); err != nil {
		out := actionFailed(page, step, "fill "+what, err)
		return &out
	}
	s.logger.WithFields(logrus.Fields{"step": step, "selector": res.MatchedSelector}).Infof("filled %s", what)
	return nil
}

// selectOption locates a select control and picks label
func (s *Steps) selectOption(ctx context.Context, page interfaces.Page, step, what, label string, candidates []entities.SelectorCandidate) *entities.StepOutcome {
	res := s.locate(ctx, page, candidates)
	if !res.Found {
		out := missing(page, step, what, res)
		return &out
	}
	if err := res.Element.SelectOption(label); err != nil {
		out := actionFailed(page, step, "select "+what, err)
		return &out
	}
	s.logger.WithFields(logrus.Fields{"step": step, "selector": res.MatchedSelector}).Infof("selected %s", what)
	return nil
}

// firstText returns the text of the first candidate that resolves
func (s *Steps) firstText(ctx context.Context, page interfaces.Page, candidates []entities.SelectorCandidate) (string, bool) {
	res := s.locate(ctx, page, candidates)
	if !res.Found {
		return "", false
	}
	text, err := res.Element.Text()
	if err != nil {
		return "", true
	}
	return strings.TrimSpace(text), true
}
