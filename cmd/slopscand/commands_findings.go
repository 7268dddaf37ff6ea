package main

import (
	"encoding/json"
	"fmt"

	"github.com/aa-workflow/slopscan/pkg/models"
	"github.com/spf13/cobra"
)

func newFindingsCmd() *cobra.Command {
	var (
		loop, file, category, severity, status string
		limit, offset                          int
		orderBy                                string
	)

	cmd := &cobra.Command{
		Use:   "findings",
		Short: "List findings, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			filters := models.Filters{
				Loop: loop, File: file, Category: category,
				Severity: severity, Status: status,
			}
			findings, err := a.orch.Findings(cmd.Context(), filters, limit, offset, models.ParseOrderBy(orderBy))
			if err != nil {
				return fmt.Errorf("list findings: %w", err)
			}

			enc, err := json.MarshalIndent(findings, "", "  ")
			if err != nil {
				return fmt.Errorf("encode findings: %w", err)
			}
			fmt.Println(string(enc))
			return nil
		},
	}
	cmd.Flags().StringVar(&loop, "loop", "", "filter by loop name")
	cmd.Flags().StringVar(&file, "file", "", "filter by exact file path")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().StringVar(&orderBy, "order-by", string(models.DefaultOrderBy), "sort order")
	return cmd
}
