package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reviewsync/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the record of mirrored reviews",
	}

	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerHealthCommand(ctx))

	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mirrored reviews, most recently synced first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := ledger.New(cfg.Paths.LedgerPath, nil)
			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No reviews recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CommentID,
					titleCase(entry.TargetType),
					dashIfEmpty(entry.Title),
					formatTimestamp(entry.UpdatedAt),
					formatTimestamp(entry.SyncedAt),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Comment", "Type", "Title", "Updated", "Synced"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to show (0 for all)")
	return cmd
}

func newLedgerHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the ledger database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			health, err := ledger.New(cfg.Paths.LedgerPath, nil).CheckHealth(cmd.Context())
			if err != nil {
				return err
			}

			missing := "-"
			if len(health.MissingColumns) > 0 {
				missing = strings.Join(health.MissingColumns, ", ")
			}
			rows := [][]string{
				{"Database", health.DBPath},
				{"Exists", yesNo(health.DatabaseExists)},
				{"Readable", yesNo(health.DatabaseReadable)},
				{"Schema version", strconv.Itoa(health.SchemaVersion)},
				{"Reviews table", yesNo(health.TableExists)},
				{"Missing columns", missing},
				{"Integrity", yesNo(health.IntegrityCheck)},
				{"Entries", strconv.Itoa(health.TotalEntries)},
				{"Last synced", formatTimestamp(health.LastSyncedAt)},
			}
			if health.Error != "" {
				rows = append(rows, []string{"Error", health.Error})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Value"}, rows, nil))
			if !health.Healthy() {
				return fmt.Errorf("ledger at %s is unhealthy", health.DBPath)
			}
			switch {
			case !health.DatabaseExists:
				fmt.Fprintln(out, "Ledger not created yet; the first sync creates it")
			case health.NeedsUpgrade:
				fmt.Fprintln(out, "Legacy ledger layout; the next sync upgrades it in place")
			}
			return nil
		},
	}
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04:05")
}

func dashIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
