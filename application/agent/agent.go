package agent

import (
	"context"
	"fmt"

	"ipo_automation/application/workflow"
	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const pageClosedMessage = "Page closed unexpectedly during automation. IPO may or may not have been submitted."

// Task is what one run should do
type Task struct {
	Credentials entities.Credentials
	Thresholds  entities.TermsThresholds
	Application entities.ApplicationDetails
}

// Agent drives the step chains against one page and decides which
// notification each outcome deserves
type Agent struct {
	steps       *workflow.Steps
	notifier    interfaces.Notifier
	screenshots interfaces.ScreenshotStore
	logger      logrus.FieldLogger
	newRunID    func() string
}

// NewAgent - creates new agent instance. The notifier is built once per run
// by the caller and shared by every notification site.
func NewAgent(steps *workflow.Steps, notifier interfaces.Notifier, screenshots interfaces.ScreenshotStore, logger logrus.FieldLogger) *Agent {
	return &Agent{
		steps:       steps,
		notifier:    notifier,
		screenshots: screenshots,
		logger:      logger,
		newRunID:    uuid.NewString,
	}
}

// run carries the per-run values the step closures fill in
type run struct {
	page     interfaces.Page
	logger   logrus.FieldLogger
	report   *entities.RunReport
	offering *entities.Offering
}

// Login - runs only the login steps, for checking credentials
func (a *Agent) Login(ctx context.Context, page interfaces.Page, creds entities.Credentials) entities.RunReport {
	r := a.newRun(page)
	res := workflow.NewChain(r.logger, a.loginSteps(r, creds)...).Run(ctx)
	r.report.Executed = res.Executed
	r.report.Final = res.Last
	if !res.Succeeded() && res.Last.Kind == entities.FailureLoginRejected {
		a.captureLoginFailure(ctx, r)
	}
	return *r.report
}

// Run - executes the whole task: login, discovery, verification and,
// when application details are complete, the application itself
func (a *Agent) Run(ctx context.Context, page interfaces.Page, task Task) entities.RunReport {
	r := a.newRun(page)
	r.logger.Info("run started")

	discovery := append(a.loginSteps(r, task.Credentials), a.discoverySteps(r, task.Thresholds)...)
	res := workflow.NewChain(r.logger, discovery...).Run(ctx)
	r.report.Executed = res.Executed
	r.report.Final = res.Last
	if !res.Succeeded() {
		a.handleFailure(ctx, r, res.Last)
		return *r.report
	}

	a.notify(ctx, r, entities.Notification{Kind: entities.NotifyIPOAvailable, Offering: r.offering})

	if !task.Application.Complete() {
		r.logger.Info("application details incomplete, not applying")
		return *r.report
	}

	res = workflow.NewChain(r.logger, a.applicationSteps(r, task.Application)...).Run(ctx)
	r.report.Executed = append(r.report.Executed, res.Executed...)
	r.report.Final = res.Last
	if !res.Succeeded() {
		a.handleFailure(ctx, r, res.Last)
		return *r.report
	}

	status, ok := res.Last.Data.(entities.ApplicationStatus)
	if !ok {
		status = entities.ApplicationStatus{Kind: entities.StatusUnknown, Message: "IPO application process completed"}
	}
	r.report.Status = &status
	a.notify(ctx, r, entities.Notification{Kind: entities.NotifyApplicationStatus, Status: &status})
	r.logger.WithField("status", status.Kind).Info("run finished")
	return *r.report
}

func (a *Agent) newRun(page interfaces.Page) *run {
	id := a.newRunID()
	return &run{
		page:   page,
		logger: a.logger.WithField("run_id", id),
		report: &entities.RunReport{RunID: id},
	}
}

func (a *Agent) loginSteps(r *run, creds entities.Credentials) []workflow.Step {
	s, page := a.steps, r.page
	return []workflow.Step{
		{Name: workflow.StepSelectDepository, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.SelectDepository(ctx, page, creds.DP)
		}},
		{Name: workflow.StepFillCredentials, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.FillCredentials(ctx, page, creds)
		}},
		{Name: workflow.StepSubmitLogin, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.SubmitLogin(ctx, page)
		}},
		{Name: workflow.StepDetectLogin, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.CheckLogin(ctx, page)
		}},
	}
}

func (a *Agent) discoverySteps(r *run, th entities.TermsThresholds) []workflow.Step {
	s, page := a.steps, r.page
	keepOffering := func(out entities.StepOutcome) entities.StepOutcome {
		if o, ok := out.Data.(*entities.Offering); ok && out.Success {
			r.offering = o
			r.report.Offering = o
		}
		return out
	}
	return []workflow.Step{
		{Name: workflow.StepOpenASBA, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.OpenASBA(ctx, page)
		}},
		{Name: workflow.StepLocateApply, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return keepOffering(s.LocateApplyAction(ctx, page))
		}},
		{Name: workflow.StepOpenShareDetails, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.OpenShareDetails(ctx, page, r.offering)
		}},
		{Name: workflow.StepVerifyTerms, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			out := s.VerifyAllotmentTerms(ctx, page, th)
			if v, ok := out.Data.(entities.TermsVerdict); ok {
				r.report.Verdict = &v
			}
			return out
		}},
		{Name: workflow.StepReturnToASBA, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return keepOffering(s.ReturnToASBA(ctx, page, r.offering))
		}},
	}
}

func (a *Agent) applicationSteps(r *run, details entities.ApplicationDetails) []workflow.Step {
	s, page := a.steps, r.page
	return []workflow.Step{
		{Name: workflow.StepOpenApplication, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.OpenApplication(ctx, page, r.offering)
		}},
		{Name: workflow.StepFillApplication, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.FillApplicationForm(ctx, page, details)
		}},
		{Name: workflow.StepSubmitApplication, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.SubmitApplication(ctx, page, details)
		}},
		{Name: workflow.StepCheckStatus, Run: func(ctx context.Context, _ entities.StepOutcome) entities.StepOutcome {
			return s.CheckFinalStatus(ctx, page)
		}},
	}
}

// handleFailure maps a failed step onto its notification
func (a *Agent) handleFailure(ctx context.Context, r *run, out entities.StepOutcome) {
	switch out.Kind {
	case entities.FailurePageUnavailable:
		status := entities.ApplicationStatus{Kind: entities.StatusUnknown, Message: pageClosedMessage}
		r.report.Status = &status
		a.notify(ctx, r, entities.Notification{Kind: entities.NotifyApplicationStatus, Status: &status})

	case entities.FailureNoOffering:
		a.notify(ctx, r, entities.Notification{Kind: entities.NotifyIPONotFound})

	case entities.FailureValidation:
		review := &entities.ReviewDetails{Reason: out.Reason}
		if r.offering != nil {
			review.CompanyName = r.offering.CompanyName
		}
		if v, ok := out.Data.(entities.TermsVerdict); ok {
			review.ShareValuePerUnit = v.Terms.ShareValuePerUnit
			review.MinUnit = v.Terms.MinUnit
		}
		a.notify(ctx, r, entities.Notification{Kind: entities.NotifyOpenForReview, Review: review})

	case entities.FailureLoginRejected:
		a.captureLoginFailure(ctx, r)
		a.notify(ctx, r, entities.Notification{Kind: entities.NotifyError, Message: out.Reason})

	default:
		a.notify(ctx, r, entities.Notification{Kind: entities.NotifyError, Message: fmt.Sprintf("%s: %s", out.Step, out.Reason)})
	}
}

// captureLoginFailure blanks credential fields, then screenshots the page
func (a *Agent) captureLoginFailure(ctx context.Context, r *run) {
	if a.screenshots == nil || r.page.IsClosed() {
		return
	}
	cleared := a.steps.ClearSensitiveFields(ctx, r.page)

	path, err := a.screenshots.Path("login-failure")
	if err != nil {
		r.logger.WithError(err).Warn("no screenshot path")
		return
	}
	if err := r.page.Screenshot(ctx, path); err != nil {
		r.logger.WithError(err).Warn("failed to take login failure screenshot")
		return
	}
	r.logger.WithFields(logrus.Fields{"path": path, "cleared_fields": cleared}).Info("saved login failure screenshot")
}

// notify sends n; delivery problems are logged and never end the run
func (a *Agent) notify(ctx context.Context, r *run, n entities.Notification) {
	if err := a.notifier.Notify(ctx, n); err != nil {
		r.logger.WithError(err).WithField("kind", n.Kind).Warn("notification failed")
		return
	}
	r.report.Notified = append(r.report.Notified, n.Kind)
}
