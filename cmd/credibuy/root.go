package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/credibuy-console/internal/app"
	"github.com/jrsteele09/credibuy-console/internal/config"
	"github.com/jrsteele09/credibuy-console/internal/logger"
)

// cli holds what every subcommand shares. The console is built once per run.
type cli struct {
	cfg     config.Config
	console *app.App
	opts    []app.Option
	loadCfg func(ctx context.Context) (config.Config, error)
	stdin   io.Reader
}

func newRootCmd(opts ...app.Option) *cobra.Command {
	c := &cli{opts: opts, loadCfg: config.New}
	return c.rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "credibuy",
		Short:         "Credibuy administrative console",
		Long:          `Manage credibuy clients, products and installment credits from the terminal or the web dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadCfg(cmd.Context())
			if err != nil {
				return err
			}
			c.cfg = cfg
			logger.Init(logger.Options{
				Level:  cfg.GetLogLevel(),
				Pretty: cfg.GetEnv() == "DEV",
			})
			if c.stdin == nil {
				c.stdin = cmd.InOrStdin()
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.console != nil {
				c.console.Close()
			}
		},
	}

	root.AddCommand(
		c.serveCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.creditsCmd(),
		c.payCmd(),
	)
	return root
}

// app builds the console on first use.
func (c *cli) app(ctx context.Context) (*app.App, error) {
	if c.console != nil {
		return c.console, nil
	}
	a, err := app.New(ctx, c.cfg, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("initialise console: %w", err)
	}
	c.console = a
	return a, nil
}
