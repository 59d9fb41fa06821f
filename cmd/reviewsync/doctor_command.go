package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewsync/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check connectivity to Plex and Trakt and access to the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, ctx.httpClient())

			out := cmd.OutOrStdout()
			failed := 0
			for _, result := range results {
				mark := "ok  "
				if !result.Passed {
					mark = "FAIL"
					failed++
				}
				fmt.Fprintf(out, "[%s] %s: %s\n", mark, result.Name, result.Detail)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
