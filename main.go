package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newRootCmd() *cobra.Command {
	cfg := defaultConfig()
	verbose := false

	cmd := &cobra.Command{
		Use:   "dvrsim <topology-file>",
		Short: "Simulate distance-vector routing over a static topology",
		Long: `dvrsim reads a weighted undirected topology, runs one routing agent per
node, lets the agents exchange distance vectors until the network goes
quiet, and writes each agent's final routing table to the output directory.

The topology file holds whitespace-separated 'u v cost' triples, one
undirected edge each.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			topology, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open topology")
			}
			defer func() {
				_ = topology.Close()
			}()

			return NewCoordinator(cfg, logger).Run(cmd.Context(), topology)
		},
	}

	cmd.Flags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for the final routing tables")
	cmd.Flags().IntVar(&cfg.MailboxDepth, "mailbox-depth", cfg.MailboxDepth, "pending message bound per mailbox")
	cmd.Flags().DurationVar(&cfg.UpdateInterval, "update-interval", cfg.UpdateInterval, "interval between periodic table re-advertisements")
	cmd.Flags().DurationVar(&cfg.QuiesceTimeout, "quiesce-timeout", cfg.QuiesceTimeout, "silence window that declares convergence")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("dvrsim:", err)
		os.Exit(1)
	}
}
