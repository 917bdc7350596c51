package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ipo_automation/application/agent"
	"ipo_automation/application/locator"
	"ipo_automation/application/workflow"
	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"
	"ipo_automation/infrastructure/browser"
	"ipo_automation/infrastructure/config"
	"ipo_automation/infrastructure/notify"
	"ipo_automation/infrastructure/security"
	"ipo_automation/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

// TerminalInterface wires configuration, browser and agent for one command
type TerminalInterface struct {
	cfg      *config.Config
	logger   *logrus.Logger
	redactor *security.Redactor
	session  *browser.Session
	out      io.Writer
}

// options are the persistent command-line flags
type options struct {
	envFile     string
	headless    bool
	headlessSet bool
	selectors   string
}

func NewTerminalInterface(opts options, out io.Writer) (*TerminalInterface, error) {
	// Setup logger
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load(opts.envFile, func(msg string) {
		logger.Warn(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	if opts.headlessSet {
		cfg.Headless = opts.headless
	}
	if opts.selectors != "" {
		cfg.SelectorsFile = opts.selectors
	}

	// Secrets never reach the log output
	redactor := security.NewRedactor(logger, cfg.Secrets()...)
	logger.AddHook(redactor.Hook())

	return &TerminalInterface{
		cfg:      cfg,
		logger:   logger,
		redactor: redactor,
		out:      out,
	}, nil
}

// openPortal launches the browser and loads the portal login page
func (t *TerminalInterface) openPortal(ctx context.Context) (*browser.Page, error) {
	bcfg := browser.DefaultConfig()
	bcfg.Headless = t.cfg.Headless

	session, err := browser.Launch(bcfg, t.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	t.session = session

	page, err := session.NewPage()
	if err != nil {
		return nil, err
	}
	t.logger.WithField("url", t.cfg.PortalURL).Info("opening portal")
	if err := page.Goto(ctx, t.cfg.PortalURL); err != nil {
		return nil, err
	}
	return page, nil
}

// newAgent builds the agent with its selector catalog, notifier and
// screenshot store
func (t *TerminalInterface) newAgent(ctx context.Context) (*agent.Agent, error) {
	catalog, err := config.LoadCatalog(t.cfg.SelectorsFile)
	if err != nil {
		return nil, err
	}
	if t.cfg.SelectorsFile != "" {
		t.logger.WithField("file", t.cfg.SelectorsFile).Info("loaded selector overrides")
	}

	screenshots, err := storage.NewScreenshotStore(t.cfg.ScreenshotDir)
	if err != nil {
		return nil, err
	}

	steps := workflow.NewSteps(locator.New(t.logger), catalog, workflow.DefaultOptions(), t.logger)
	return agent.NewAgent(steps, t.notifier(ctx), screenshots, t.logger), nil
}

// notifier returns the Telegram bot, or a logging stand-in when the bot is
// not configured or does not start
func (t *TerminalInterface) notifier(ctx context.Context) interfaces.Notifier {
	if !t.cfg.NotificationsEnabled() {
		t.logger.Info("Telegram not configured, notifications disabled")
		return notify.NewNopNotifier(t.logger)
	}

	bot, err := notify.NewTelegramNotifier(ctx, notify.TelegramConfig{
		Token:  t.cfg.TelegramToken,
		ChatID: t.cfg.TelegramChat,
	}, t.redactor, t.logger)
	if err != nil {
		t.logger.WithError(err).Warn("Telegram bot unavailable, notifications disabled")
		return notify.NewNopNotifier(t.logger)
	}
	return bot
}

// Run - logs in, checks for an open IPO and applies when configured to
func (t *TerminalInterface) Run(ctx context.Context) error {
	if err := t.cfg.Validate(); err != nil {
		return err
	}
	ag, err := t.newAgent(ctx)
	if err != nil {
		return err
	}
	page, err := t.openPortal(ctx)
	if err != nil {
		return err
	}

	report := ag.Run(ctx, page, agent.Task{
		Credentials: t.cfg.Credentials,
		Thresholds:  t.cfg.Thresholds,
		Application: t.cfg.Application,
	})
	printReport(t.out, report)
	return reportError(report)
}

// Login - only checks that the configured credentials are accepted
func (t *TerminalInterface) Login(ctx context.Context) error {
	if err := t.cfg.Validate(); err != nil {
		return err
	}
	ag, err := t.newAgent(ctx)
	if err != nil {
		return err
	}
	page, err := t.openPortal(ctx)
	if err != nil {
		return err
	}

	report := ag.Login(ctx, page, t.cfg.Credentials)
	printReport(t.out, report)
	return reportError(report)
}

// Inspect - lists the form controls of the login page, for fixing
// selectors after the portal changes
func (t *TerminalInterface) Inspect(ctx context.Context) error {
	page, err := t.openPortal(ctx)
	if err != nil {
		return err
	}
	page.Pause(ctx, workflow.DefaultOptions().NavigationSettle)
	if err := inspectPage(ctx, page, t.out); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "\nOpen tabs: %d\n", t.session.OpenPages())
	return nil
}

// inspectPage writes one line per form control of page
func inspectPage(ctx context.Context, page interfaces.Page, w io.Writer) error {
	controls, err := page.FormControls(ctx)
	if err != nil {
		return fmt.Errorf("failed to list form controls: %w", err)
	}
	fmt.Fprintf(w, "Found %d form controls on %s\n\n", len(controls), page.URL())
	for i, control := range controls {
		fmt.Fprintf(w, "%2d. %s\n", i+1, describeControl(control))
	}
	return nil
}

func (t *TerminalInterface) Close() error {
	if t.session == nil {
		return nil
	}
	return t.session.Close()
}

// describeControl renders one control on a line, flagging credential inputs
func describeControl(el entities.PageElement) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", label, value))
		}
	}
	add("type", el.Type)
	add("name", el.Name)
	add("id", el.ID)
	add("placeholder", el.Placeholder)
	add("class", el.Class)
	if len(el.Options) > 0 {
		parts = append(parts, fmt.Sprintf("options=%d", len(el.Options)))
	}

	line := el.Tag
	if len(parts) > 0 {
		line += " " + strings.Join(parts, " ")
	}
	if el.Type == "password" || security.IsSensitiveField(el.Name) || security.IsSensitiveField(el.ID) {
		line += " [sensitive]"
	}
	return line
}

func printReport(w io.Writer, report entities.RunReport) {
	fmt.Fprintf(w, "\nRun %s\n", report.RunID)
	fmt.Fprintf(w, "Steps: %s\n", strings.Join(report.Executed, " -> "))
	if report.Offering != nil {
		fmt.Fprintf(w, "Offering: %s\n", report.Offering.CompanyName)
	}
	if report.Verdict != nil {
		fmt.Fprintf(w, "Terms: share value %g, min unit %g (valid: %t)\n",
			report.Verdict.Terms.ShareValuePerUnit, report.Verdict.Terms.MinUnit, report.Verdict.Valid)
	}
	if report.Status != nil {
		fmt.Fprintf(w, "Application status: %s (%s)\n", report.Status.Kind, report.Status.Message)
	}
	if report.Final.Success {
		fmt.Fprintf(w, "Finished at %s\n", report.Final.Step)
		return
	}
	fmt.Fprintf(w, "Stopped at %s: %s\n", report.Final.Step, report.Final.Reason)
}

// reportError turns a failed run into a command error. Outcomes that were
// reported to the user (no open issue, terms needing review, an ambiguous
// closed page) are not errors.
func reportError(report entities.RunReport) error {
	if report.Final.Success {
		return nil
	}
	switch report.Final.Kind {
	case entities.FailureNoOffering, entities.FailureValidation, entities.FailurePageUnavailable:
		return nil
	}
	return fmt.Errorf("%s failed: %s", report.Final.Step, report.Final.Reason)
}
