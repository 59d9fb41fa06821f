package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reviewsync/internal/daemon"
	"reviewsync/internal/logging"
	"reviewsync/internal/workflow"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var failOnError bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror new and edited Trakt reviews to Plex once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runID := uuid.NewString()
			logger, err := ctx.newLogger(runID)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			d, err := buildDaemon(cfg, logger, ctx.httpClient(), workflow.Options{DryRun: dryRun, RunID: runID})
			if err != nil {
				return err
			}

			summary, err := d.RunOnce(signalCtx)
			out := cmd.OutOrStdout()
			if errors.Is(err, daemon.ErrLocked) {
				logging.WarnWithContext(logger, "sync skipped", "run_skipped_locked",
					logging.String("lock", d.LockPath()),
					logging.String(logging.FieldErrorHint, "another reviewsync process is syncing; wait for it to finish"),
					logging.String(logging.FieldImpact, "no reviews processed by this invocation"),
				)
				fmt.Fprintf(out, "Another reviewsync run holds %s; nothing to do\n", d.LockPath())
				return nil
			}
			if err != nil {
				return err
			}

			printSummary(out, summary)
			if failOnError && summary.Failures() > 0 {
				return fmt.Errorf("%d review(s) could not be mirrored; see the log for details", summary.Failures())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve reviews and log payloads without submitting or recording")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Exit non-zero when any review fails")
	return cmd
}

func printSummary(out io.Writer, summary workflow.Summary) {
	rows := [][]string{
		{"Fetched", strconv.Itoa(summary.Fetched)},
		{"Already synced", strconv.Itoa(summary.Skipped())},
		{"Submitted", strconv.Itoa(summary.Submitted)},
		{"Recorded", strconv.Itoa(summary.Recorded)},
	}
	if summary.DryRun > 0 {
		rows = append(rows, []string{"Dry run", strconv.Itoa(summary.DryRun)})
	}
	rows = append(rows,
		[]string{"Unresolved", strconv.Itoa(summary.Unresolved)},
		[]string{"Rejected", strconv.Itoa(summary.Rejected)},
		[]string{"Transport failures", strconv.Itoa(summary.TransportFailures)},
		[]string{"Ledger failures", strconv.Itoa(summary.PersistenceFailures)},
	)
	if summary.FetchFailed {
		rows = append(rows, []string{"Fetch", "failed"})
	}
	if summary.IndexFailed {
		rows = append(rows, []string{"Library index", "failed"})
	}
	rows = append(rows, []string{"Duration", summary.Duration.Round(time.Millisecond).String()})

	fmt.Fprintf(out, "Run %s\n", summary.RunID)
	fmt.Fprintln(out, renderTable(out, []string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}
