package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newDetectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <text>",
		Short: "Detect the intent of an utterance",
		Example: `  nluctl detect "iki çay ver"
  nluctl detect bi çay alalım`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Service.Detect(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}
