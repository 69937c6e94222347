package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seu-repo/restoran-pos/internal/app"
	"github.com/seu-repo/restoran-pos/pkg/config"
)

type rootOptions struct {
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "nluctl",
		Short: "Operate the restaurant intent detection engine",
		Long: `nluctl runs intent detection against the configured trigger set and lets
operators curate trigger phrases and work through the human review queue.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./configs/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(
		newDetectCmd(opts),
		newTriggersCmd(opts),
		newReviewCmd(opts),
	)
	return cmd
}

// open builds the service the same way the server does, without the message queue.
func (o *rootOptions) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if o.verbose {
		if logger, err = app.NewLogger(config.LoggingConfig{Level: "debug", Format: "console"}); err != nil {
			return nil, err
		}
	}

	return app.Build(cmd.Context(), cfg, logger, app.Options{WithoutQueue: true})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
