package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/od-mailer/internal/config"
	"github.com/example/od-mailer/internal/logging"
)

const appVersion = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions carries state shared between the root command and its children.
type rootOptions struct {
	envFile string
	cfg     config.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "odgen",
		Short:         "Generate On Duty approval mails from event rosters",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(opts.envFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	cmd.SetVersionTemplate("odgen v{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded before reading OD_* variables")

	cmd.AddCommand(
		newServeCommand(opts),
		newComputeCommand(opts),
		newReportCommand(opts),
		newTimetableCommand(opts),
		newTemplateCommand(),
	)
	return cmd
}

// withApp wires the service graph for one command run and releases it after.
func (o *rootOptions) withApp(cmd *cobra.Command, run func(a *app) error) (err error) {
	logger := logging.NewLogger(cmd.ErrOrStderr(), o.cfg.LogLevel, o.cfg.LogFormat)
	a, err := newApp(cmd.Context(), o.cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return run(a)
}
