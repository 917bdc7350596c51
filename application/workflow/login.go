package workflow

import (
	"context"
	"fmt"
	"strings"

	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// dpStrategy is one way of driving the DP dropdown: open a control, then
// pick the option
type dpStrategy struct {
	name    string
	opener  []entities.SelectorCandidate
	options []entities.SelectorCandidate
	native  bool
}

// SelectDepository picks dpName from the DP dropdown. The portal renders it
// as a Select2 widget; a native select and a generic custom dropdown are
// tried after that.
func (s *Steps) SelectDepository(ctx context.Context, page interfaces.Page, dpName string) entities.StepOutcome {
	if strings.TrimSpace(dpName) == "" {
		return entities.Succeeded(StepSelectDepository, "skipped")
	}

	s.waitReady(ctx, page, s.catalog.PageReady)

	strategies := []dpStrategy{
		{name: "select2", opener: s.catalog.Select2Containers, options: DPOptions(dpName)},
		{name: "native", opener: s.catalog.NativeDPSelects, native: true},
		{name: "custom", opener: s.catalog.CustomDPDropdowns, options: CustomDPOptions(dpName)},
	}

	var tried []string
	for _, strategy := range strategies {
		if page.IsClosed() {
			return entities.Failed(StepSelectDepository, entities.FailurePageUnavailable, "page closed while selecting DP")
		}

		control := s.locate(ctx, page, strategy.opener)
		tried = append(tried, control.Tried...)
		if !control.Found {
			continue
		}

		if strategy.native {
			if err := control.Element.SelectOption(dpName); err != nil {
				s.logger.WithError(err).WithField("selector", control.MatchedSelector).Debug("native DP select rejected option")
				continue
			}
			s.logger.WithFields(logrus.Fields{"dp": dpName, "strategy": strategy.name}).Info("selected DP")
			page.Pause(ctx, s.opts.Settle)
			return entities.Succeeded(StepSelectDepository, strategy.name)
		}

		if err := control.Element.Click(); err != nil {
			s.logger.WithError(err).WithField("selector", control.MatchedSelector).Debug("could not open DP dropdown")
			continue
		}
		page.Pause(ctx, s.opts.Settle)

		option := s.locate(ctx, page, strategy.options)
		tried = append(tried, option.Tried...)
		if !option.Found {
			continue
		}
		if err := option.Element.Click(); err != nil {
			s.logger.WithError(err).WithField("selector", option.MatchedSelector).Debug("could not click DP option")
			continue
		}

		s.logger.WithFields(logrus.Fields{"dp": dpName, "strategy": strategy.name, "selector": option.MatchedSelector}).Info("selected DP")
		page.Pause(ctx, s.opts.Settle)
		return entities.Succeeded(StepSelectDepository, strategy.name)
	}

	if page.IsClosed() {
		return entities.Failed(StepSelectDepository, entities.FailurePageUnavailable, "page closed while selecting DP")
	}
	return entities.Failed(StepSelectDepository, entities.FailureElementNotFound,
		fmt.Sprintf("could not select DP %q (tried %d selectors)", dpName, len(tried)))
}

// FillCredentials fills username and password. Each field is resolved
// against its own candidate list, so one missing field does not stop the
// other from being filled.
func (s *Steps) FillCredentials(ctx context.Context, page interfaces.Page, creds entities.Credentials) entities.StepOutcome {
	s.waitReady(ctx, page, s.catalog.UsernameFields)

	fill := entities.LoginFill{}
	var problems []string

	if out := s.fill(ctx, page, StepFillCredentials, "username field", creds.Username, s.catalog.UsernameFields); out != nil {
		if out.Kind == entities.FailurePageUnavailable {
			return out.WithData(fill)
		}
		problems = append(problems, out.Reason)
	} else {
		fill.UsernameFilled = true
	}

	if out := s.fill(ctx, page, StepFillCredentials, "password field", creds.Password, s.catalog.PasswordFields); out != nil {
		if out.Kind == entities.FailurePageUnavailable {
			return out.WithData(fill)
		}
		problems = append(problems, out.Reason)
	} else {
		fill.PasswordFilled = true
	}

	if len(problems) > 0 {
		return entities.Failed(StepFillCredentials, entities.FailureElementNotFound, strings.Join(problems, "; ")).WithData(fill)
	}
	return entities.Succeeded(StepFillCredentials, fill)
}

// SubmitLogin clicks the login button and waits for the portal to respond
func (s *Steps) SubmitLogin(ctx context.Context, page interfaces.Page) entities.StepOutcome {
	if _, out := s.click(ctx, page, StepSubmitLogin, "login button", s.catalog.LoginButtons); out != nil {
		return *out
	}
	page.Pause(ctx, s.opts.NavigationSettle)
	return entities.Succeeded(StepSubmitLogin, nil)
}

// DetectLoginState decides whether the login went through. Checks run in a
// fixed order: the URL leaving the login route, then success markers, then
// error markers. When none applies the login counts as failed.
func (s *Steps) DetectLoginState(ctx context.Context, page interfaces.Page) entities.LoginState {
	url := page.URL()
	state := entities.LoginState{URL: url}

	marker := strings.ToLower(s.catalog.LoginURLMarker)
	if marker != "" && !strings.Contains(strings.ToLower(url), marker) {
		state.LoggedIn = true
		state.Signal = "url"
		return state
	}

	if res := s.locate(ctx, page, s.catalog.LoginSuccess); res.Found {
		state.LoggedIn = true
		state.Signal = "success_marker"
		return state
	}

	if res := s.locate(ctx, page, s.catalog.LoginErrors); res.Found {
		state.Signal = "error_marker"
		if text, err := res.Element.Text(); err == nil {
			state.ErrorText = strings.TrimSpace(text)
		}
		return state
	}

	state.Signal = "still_on_login"
	return state
}

// CheckLogin wraps DetectLoginState as a chain step
func (s *Steps) CheckLogin(ctx context.Context, page interfaces.Page) entities.StepOutcome {
	state := s.DetectLoginState(ctx, page)
	if state.LoggedIn {
		s.logger.WithField("signal", state.Signal).Info("login successful")
		return entities.Succeeded(StepDetectLogin, state)
	}
	if page.IsClosed() {
		return entities.Failed(StepDetectLogin, entities.FailurePageUnavailable, "page closed after login").WithData(state)
	}

	reason := "Login failed"
	if state.ErrorText != "" {
		reason = fmt.Sprintf("Login failed: %s", state.ErrorText)
	}
	return entities.Failed(StepDetectLogin, entities.FailureLoginRejected, reason).WithData(state)
}

// ClearSensitiveFields blanks every credential input that is present so a
// following screenshot does not capture them
func (s *Steps) ClearSensitiveFields(ctx context.Context, page interfaces.Page) int {
	cleared := 0
	for _, candidate := range s.catalog.SensitiveFields {
		res := s.locator.Locate(ctx, page, entities.LocateRequest{
			Candidates:          []entities.SelectorCandidate{candidate},
			PerCandidateTimeout: s.opts.CandidateTimeout,
			Visibility:          entities.MayBeHidden,
		})
		if !res.Found {
			continue
		}
		if err := res.Element.Fill(""); err == nil {
			cleared++
		}
	}
	return cleared
}
