package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newBackendsCmd() *cobra.Command {
	var forceRefresh bool
	cmd := &cobra.Command{
		Use:   "backends",
		Short: "Show which LLM backends are currently available",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			enc, err := json.MarshalIndent(a.router.Available(cmd.Context(), forceRefresh), "", "  ")
			if err != nil {
				return fmt.Errorf("encode backends: %w", err)
			}
			fmt.Println(string(enc))
			return nil
		},
	}
	cmd.Flags().BoolVar(&forceRefresh, "refresh", false, "bypass the availability cache")
	return cmd
}

func newToolsCmd() *cobra.Command {
	var forceRefresh bool
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Show which external static analyzers are currently available",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			enc, err := json.MarshalIndent(a.tools.Available(cmd.Context(), forceRefresh), "", "  ")
			if err != nil {
				return fmt.Errorf("encode tools: %w", err)
			}
			fmt.Println(string(enc))
			return nil
		},
	}
	cmd.Flags().BoolVar(&forceRefresh, "refresh", false, "bypass the availability cache")
	return cmd
}
