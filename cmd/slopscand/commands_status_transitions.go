package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <finding-id>",
		Short: "Acknowledge a finding",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransition(func(a *app, ctx context.Context, id string) error { return a.orch.Acknowledge(ctx, id) }),
	}
}

func newFixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix <finding-id>",
		Short: "Mark a finding fixed",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransition(func(a *app, ctx context.Context, id string) error { return a.orch.MarkFixed(ctx, id) }),
	}
}

func newFalsePositiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "false-positive <finding-id>",
		Short: "Mark a finding a false positive",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransition(func(a *app, ctx context.Context, id string) error { return a.orch.MarkFalsePositive(ctx, id) }),
	}
}

func runTransition(apply func(a *app, ctx context.Context, id string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := apply(a, cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("transition finding: %w", err)
		}
		fmt.Printf("%s: ok\n", args[0])
		return nil
	}
}
