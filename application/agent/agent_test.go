package agent

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"ipo_automation/application/locator"
	"ipo_automation/application/pagetest"
	"ipo_automation/application/workflow"
	"ipo_automation/domain/entities"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	loginURL     = "https://meroshare.test/#/login"
	dashboardURL = "https://meroshare.test/#/dashboard"
	asbaURL      = "https://meroshare.test/#/asba"
	detailsURL   = "https://meroshare.test/#/asba/details"
	applyURL     = "https://meroshare.test/#/asba/apply"
)

type recordingNotifier struct {
	sent []entities.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg entities.Notification) error {
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) kinds() []entities.NotificationKind {
	var kinds []entities.NotificationKind
	for _, m := range n.sent {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}

type dirStore struct{ dir string }

func (s dirStore) Path(label string) (string, error) {
	return filepath.Join(s.dir, label+".png"), nil
}

// portal builds a synthetic MeroShare walk-through; afterProceed decides
// what the page does once the application is submitted
type portal struct {
	page         *pagetest.Page
	loginOK      bool
	offering     bool
	terms        string
	afterProceed func(p *pagetest.Page)
	closeOn      string
}

func newPortal() *portal {
	return &portal{
		loginOK:  true,
		offering: true,
		terms:    "Share Value Per Unit\nRs. 100\nMin Unit\n10",
		afterProceed: func(p *pagetest.Page) {
			p.Add(".toast-success").Label = "Share has been applied successfully."
		},
	}
}

var (
	offeringRow   = workflow.DefaultCatalog().OfferingRows[0].Selector
	rowCompany    = locator.Within(offeringRow, entities.Selectors(".company-name"))[0].Selector
	rowApplyButton = locator.Within(offeringRow, entities.Selectors(`button:text-is("Apply")`))[0].Selector
)

func (pt *portal) build() *pagetest.Page {
	page := pagetest.New(loginURL)
	dp := page.Add("select#selectBranch")
	dp.Options = []string{"Nepal Bank Limited"}
	page.Add("input#username")
	page.Add(`input[type="password"]`)
	page.Add(`button[type="submit"]`)

	page.OnAction = func(p *pagetest.Page, a pagetest.Action) {
		if a.Verb != "click" {
			return
		}
		if pt.closeOn != "" && a.Selector == pt.closeOn {
			p.Close()
			return
		}
		switch a.Selector {
		case `button[type="submit"]`:
			if !pt.loginOK {
				p.Add(".alert-danger").Label = "Invalid username or password"
				return
			}
			p.Remove(`button[type="submit"]`)
			p.SetURL(dashboardURL)
			p.Add(`a:has-text("My ASBA")`)
		case `a:has-text("My ASBA")`:
			p.SetURL(asbaURL)
			// an issue already applied for is listed first
			p.Add(".company-name").Label = "Already Applied Co."
			if pt.offering {
				p.Add(offeringRow).Label = "Himal Hydropower Ltd.\nOrdinary Shares\nIPO\nApply"
				p.Add(rowCompany).Label = "Himal Hydropower Ltd."
				p.Add(rowApplyButton)
			}
		case rowCompany:
			p.SetURL(detailsURL)
			p.AddHidden(`label:has-text("Share Value Per Unit")`)
			p.SetBody(pt.terms)
		case rowApplyButton:
			p.SetURL(applyURL)
			p.Add("select#selectBank").Options = []string{"Nepal Bank Limited"}
			p.Add("select#accountNumber").Options = []string{"0123456789"}
			p.Add("input#appliedKitta")
			p.Add("input#crnNumber")
			p.AddHidden("input#disclaimer")
			p.Add(`button:has-text("Proceed")`)
		case `button:has-text("Proceed")`:
			pt.afterProceed(p)
		}
	}
	pt.page = page
	return page
}

func testTask() Task {
	return Task{
		Credentials: entities.Credentials{Username: "alice", Password: "hunter2", DP: "Nepal Bank Limited"},
		Thresholds:  entities.TermsThresholds{MaxShareValue: 100, MaxMinUnit: 10, Policy: entities.TermsInclusive},
		Application: entities.ApplicationDetails{Bank: "Nepal Bank Limited", AccountNumber: "0123456789", Kitta: "10", CRN: "CRN-1"},
	}
}

func newTestAgent(t *testing.T, notifier *recordingNotifier) (*Agent, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	steps := workflow.NewSteps(locator.New(logger), workflow.DefaultCatalog(), workflow.Options{}, logger)
	dir := t.TempDir()
	a := NewAgent(steps, notifier, dirStore{dir: dir}, logger)
	a.newRunID = func() string { return "run-1" }
	return a, dir
}

func TestRunAppliesAndReportsSuccess(t *testing.T) {
	notifier := &recordingNotifier{}
	a, _ := newTestAgent(t, notifier)
	page := newPortal().build()

	report := a.Run(context.Background(), page, testTask())

	require.True(t, report.Final.Success, report.Final.Reason)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, []string{
		workflow.StepSelectDepository, workflow.StepFillCredentials, workflow.StepSubmitLogin,
		workflow.StepDetectLogin, workflow.StepOpenASBA, workflow.StepLocateApply,
		workflow.StepOpenShareDetails, workflow.StepVerifyTerms, workflow.StepReturnToASBA,
		workflow.StepOpenApplication, workflow.StepFillApplication, workflow.StepSubmitApplication,
		workflow.StepCheckStatus,
	}, report.Executed)
	assert.Equal(t, []entities.NotificationKind{entities.NotifyIPOAvailable, entities.NotifyApplicationStatus}, notifier.kinds())
	assert.Equal(t, "Himal Hydropower Ltd.", notifier.sent[0].Offering.CompanyName)
	assert.Equal(t, entities.StatusSuccess, notifier.sent[1].Status.Kind)
	require.NotNil(t, report.Verdict)
	assert.True(t, report.Verdict.Valid)
	assert.Equal(t, report.Notified, notifier.kinds())
}

func TestRunPageClosedAfterSubmitIsUnknown(t *testing.T) {
	notifier := &recordingNotifier{}
	a, _ := newTestAgent(t, notifier)
	pt := newPortal()
	pt.afterProceed = func(p *pagetest.Page) { p.Close() }

	report := a.Run(context.Background(), pt.build(), testTask())

	require.NotNil(t, report.Status)
	assert.Equal(t, entities.StatusUnknown, report.Status.Kind)
	last := notifier.sent[len(notifier.sent)-1]
	assert.Equal(t, entities.NotifyApplicationStatus, last.Kind)
	assert.Equal(t, entities.StatusUnknown, last.Status.Kind)
}

func TestRunPageClosedMidStepIsUnknown(t *testing.T) {
	notifier := &recordingNotifier{}
	a, _ := newTestAgent(t, notifier)
	pt := newPortal()
	pt.closeOn = `a:has-text("My ASBA")`
	page := pt.build()

	report := a.Run(context.Background(), page, testTask())

	assert.False(t, report.Final.Success)
	assert.Equal(t, entities.FailurePageUnavailable, report.Final.Kind)
	assert.Equal(t, []entities.NotificationKind{entities.NotifyApplicationStatus}, notifier.kinds())
	assert.Equal(t, entities.StatusUnknown, notifier.sent[0].Status.Kind)
}

func TestRunNoOffering(t *testing.T) {
	notifier := &recordingNotifier{}
	a, _ := newTestAgent(t, notifier)
	pt := newPortal()
	pt.offering = false

	report := a.Run(context.Background(), pt.build(), testTask())

	assert.Equal(t, workflow.StepLocateApply, report.Final.Step)
	assert.Equal(t, []entities.NotificationKind{entities.NotifyIPONotFound}, notifier.kinds())
}

func TestRunTermsNeedReview(t *testing.T) {
	notifier := &recordingNotifier{}
	a, _ := newTestAgent(t, notifier)
	pt := newPortal()
	pt.terms = "Share Value Per Unit\nRs. 500\nMin Unit\n50"
	page := pt.build()

	report := a.Run(context.Background(), page, testTask())

	assert.Equal(t, workflow.StepVerifyTerms, report.Final.Step)
	require.Equal(t, []entities.NotificationKind{entities.NotifyOpenForReview}, notifier.kinds())
	review := notifier.sent[0].Review
	assert.Equal(t, "Himal Hydropower Ltd.", review.CompanyName)
	assert.Equal(t, 500.0, review.ShareValuePerUnit)
	assert.Equal(t, 50.0, review.MinUnit)
	assert.NotEmpty(t, review.Reason)
	for _, action := range page.Actions() {
		assert.NotEqual(t, rowApplyButton, action.Selector, "must not apply when terms fail")
	}
}

func TestRunLoginRejected(t *testing.T) {
	notifier := &recordingNotifier{}
	a, dir := newTestAgent(t, notifier)
	pt := newPortal()
	pt.loginOK = false
	page := pt.build()

	report := a.Run(context.Background(), page, testTask())

	assert.Equal(t, entities.FailureLoginRejected, report.Final.Kind)
	require.Equal(t, []entities.NotificationKind{entities.NotifyError}, notifier.kinds())
	assert.Equal(t, "Login failed: Invalid username or password", notifier.sent[0].Message)
	assert.Empty(t, page.Element(`input[type="password"]`).Value, "credentials are cleared before the screenshot")
	_, err := os.Stat(filepath.Join(dir, "login-failure.png"))
	assert.NoError(t, err)
}

func TestRunWithoutApplicationDetails(t *testing.T) {
	notifier := &recordingNotifier{}
	a, _ := newTestAgent(t, notifier)
	task := testTask()
	task.Application.CRN = ""

	report := a.Run(context.Background(), newPortal().build(), task)

	assert.True(t, report.Final.Success)
	assert.Equal(t, workflow.StepReturnToASBA, report.Final.Step)
	assert.Equal(t, []entities.NotificationKind{entities.NotifyIPOAvailable}, notifier.kinds())
	assert.Nil(t, report.Status)
}

func TestRunNotifierFailureIsNotFatal(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	a, _ := newTestAgent(t, notifier)

	report := a.Run(context.Background(), newPortal().build(), testTask())

	assert.True(t, report.Final.Success)
	assert.Len(t, notifier.sent, 2)
	assert.Empty(t, report.Notified)
}

func TestLoginOnly(t *testing.T) {
	notifier := &recordingNotifier{}
	a, _ := newTestAgent(t, notifier)

	report := a.Login(context.Background(), newPortal().build(), testTask().Credentials)

	assert.True(t, report.Final.Success)
	assert.Equal(t, workflow.StepDetectLogin, report.Final.Step)
	assert.Empty(t, notifier.sent)
}
