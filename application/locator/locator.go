package locator

import (
	"context"
	"time"

	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// DefaultCandidateTimeout is used when neither the candidate nor the
// request sets a per-candidate wait
const DefaultCandidateTimeout = 1500 * time.Millisecond

// Locator resolves ordered selector candidates against a page
type Locator struct {
	logger logrus.FieldLogger
	now    func() time.Time
}

// New - creates new locator
func New(logger logrus.FieldLogger) *Locator {
	return &Locator{
		logger: logger,
		now:    time.Now,
	}
}

// Locate probes candidates strictly in order and returns the first one that
// resolves. Probe failures are expected and never surface as errors.
func (l *Locator) Locate(ctx context.Context, page interfaces.Page, req entities.LocateRequest) entities.LocateResult {
	start := l.now()
	result := entities.LocateResult{
		MatchedIndex: -1,
		Tried:        make([]string, 0, len(req.Candidates)),
	}
	if len(req.Candidates) == 0 {
		return result
	}

	defaultTimeout := req.PerCandidateTimeout
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultCandidateTimeout
	}

	var deadline time.Time
	if req.OverallTimeout > 0 {
		deadline = start.Add(req.OverallTimeout)
	}

	for i, candidate := range req.Candidates {
		if ctx.Err() != nil {
			result.BudgetExhausted = true
			break
		}

		timeout := candidate.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		if !deadline.IsZero() {
			remaining := deadline.Sub(l.now())
			if remaining <= 0 {
				result.BudgetExhausted = true
				break
			}
			if remaining < timeout {
				timeout = remaining
			}
		}

		result.Tried = append(result.Tried, candidate.Selector)
		element, err := page.Probe(ctx, candidate.Selector, timeout, req.Visibility)
		if err != nil {
			l.logger.WithFields(logrus.Fields{
				"selector": candidate.Selector,
				"error":    err,
			}).Debug("selector candidate missed")
			continue
		}

		l.logger.WithField("selector", candidate.Selector).Debug("selector candidate matched")
		result.Found = true
		result.Element = element
		result.MatchedSelector = candidate.Selector
		result.MatchedIndex = i
		break
	}

	result.Elapsed = l.now().Sub(start)
	return result
}

// First is Locate with the request's defaults: visible elements, default
// per-candidate timeout, no overall cap
func (l *Locator) First(ctx context.Context, page interfaces.Page, candidates []entities.SelectorCandidate) entities.LocateResult {
	return l.Locate(ctx, page, entities.LocateRequest{Candidates: candidates})
}

// Within scopes candidates to descendants of the element matched by scope,
// keeping each candidate's timeout
func Within(scope string, candidates []entities.SelectorCandidate) []entities.SelectorCandidate {
	if scope == "" {
		return candidates
	}
	scoped := make([]entities.SelectorCandidate, 0, len(candidates))
	for _, c := range candidates {
		scoped = append(scoped, entities.SelectorCandidate{
			Selector: scope + " >> " + c.Selector,
			Timeout:  c.Timeout,
		})
	}
	return scoped
}
