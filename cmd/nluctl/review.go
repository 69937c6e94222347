package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReviewCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Work through low-confidence detections",
		Long: `Review commands need a persistent review store (review.sink: postgres).
Resolving an entry adds its text as a trigger phrase of the chosen intent.`,
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List pending review entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.Service.PendingReviews(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of entries")

	resolve := &cobra.Command{
		Use:   "resolve <id> <intent>",
		Short: "Assign an intent to an entry and learn its text as a trigger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.Service.ResolveReview(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	}

	dismiss := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss an entry without learning from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Service.DismissReview(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dismissed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, resolve, dismiss)
	return cmd
}
