package terminal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Execute runs the command-line entry point
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "ipo-automation",
		Short:         "Apply for open IPOs on MeroShare",
		Long:          "Logs in to MeroShare, checks My ASBA for an open issue, verifies its terms and applies, reporting through Telegram.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with credentials and settings")
	cmd.PersistentFlags().BoolVar(&opts.headless, "headless", false, "run the browser headless (overrides HEADLESS)")
	cmd.PersistentFlags().StringVar(&opts.selectors, "selectors", "", "YAML file overriding selector lists (overrides SELECTORS_FILE)")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newInspectCmd(opts))
	return cmd
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Log in, verify the open IPO and apply",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInterface(cmd, opts, func(ctx context.Context, t *TerminalInterface) error {
				return t.Run(ctx)
			})
		},
	}
}

func newLoginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Only check that the configured credentials log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInterface(cmd, opts, func(ctx context.Context, t *TerminalInterface) error {
				return t.Login(ctx)
			})
		},
	}
}

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "List the form controls of the login page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInterface(cmd, opts, func(ctx context.Context, t *TerminalInterface) error {
				return t.Inspect(ctx)
			})
		},
	}
}

// withInterface builds the interface, runs fn under a context cancelled on
// SIGINT/SIGTERM and always closes the browser
func withInterface(cmd *cobra.Command, opts *options, fn func(context.Context, *TerminalInterface) error) error {
	opts.headlessSet = cmd.Flags().Changed("headless")

	t, err := NewTerminalInterface(*opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if err := t.Close(); err != nil {
			t.logger.WithError(err).Warn("failed to close browser")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, t)
}
