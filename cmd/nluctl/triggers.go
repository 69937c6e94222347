package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newTriggersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "Inspect and edit trigger phrases",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the trigger set",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := opts.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				return printJSON(cmd.OutOrStdout(), a.Service.Triggers())
			},
		},
		&cobra.Command{
			Use:   "add <intent> <phrase>",
			Short: "Add a trigger phrase to an intent",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := opts.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				phrase := strings.Join(args[1:], " ")
				added, err := a.Service.AddTrigger(cmd.Context(), args[0], phrase)
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "%q already triggers %s\n", phrase, args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %q to %s\n", phrase, args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <intent> <phrase>",
			Short: "Remove a trigger phrase from an intent",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := opts.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				phrase := strings.Join(args[1:], " ")
				removed, err := a.Service.RemoveTrigger(cmd.Context(), args[0], phrase)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is not a trigger of %s\n", phrase, args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %q from %s\n", phrase, args[0])
				return nil
			},
		},
		newTriggersSearchCmd(opts),
		newTriggersSlotsCmd(opts),
	)
	return cmd
}

func newTriggersSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search trigger phrases",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd.OutOrStdout(), a.Service.SearchTriggers(strings.Join(args, " "), limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of matches")
	return cmd
}

func newTriggersSlotsCmd(opts *rootOptions) *cobra.Command {
	var clearSlots bool
	cmd := &cobra.Command{
		Use:     "slots <intent> [key=value...]",
		Short:   "Set the default slots suggested for an intent",
		Example: `  nluctl triggers slots siparis_kahve urun="Türk Kahvesi"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slots, err := parseSlots(args[1:])
			if err != nil {
				return err
			}
			if len(slots) == 0 && !clearSlots {
				return fmt.Errorf("no slots given; use --clear to remove the template")
			}

			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Service.SetDefaultSlots(cmd.Context(), args[0], slots); err != nil {
				return err
			}
			def, _ := a.Service.Triggers().Find(args[0])
			return printJSON(cmd.OutOrStdout(), def)
		},
	}
	cmd.Flags().BoolVar(&clearSlots, "clear", false, "remove the intent's default slots")
	return cmd
}

// parseSlots reads key=value pairs. Integer values are stored as numbers.
func parseSlots(pairs []string) (map[string]any, error) {
	slots := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid slot %q, expected key=value", pair)
		}
		if n, err := strconv.Atoi(value); err == nil {
			slots[key] = n
			continue
		}
		slots[key] = value
	}
	return slots, nil
}
