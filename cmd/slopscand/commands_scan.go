package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var loops []string
	var parallel bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run analysis loops over the configured codebase",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()

			var out any
			if len(loops) == 0 {
				out = a.orch.RunAll(ctx, parallel)
			} else {
				names := make([]string, 0, len(loops))
				for _, l := range loops {
					names = append(names, strings.TrimSpace(l))
				}
				out = a.orch.RunSpecific(ctx, names, parallel)
			}

			enc, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("encode scan results: %w", err)
			}
			fmt.Println(string(enc))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&loops, "loops", nil, "comma-separated loop names to run (default: all)")
	cmd.Flags().BoolVar(&parallel, "parallel", true, "run loops concurrently, bounded by orchestrator.max_parallel")
	return cmd
}
