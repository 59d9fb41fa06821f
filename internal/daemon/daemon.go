package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"reviewsync/internal/logging"
	"reviewsync/internal/services"
	"reviewsync/internal/workflow"
)

// Runner performs one sync pass.
type Runner interface {
	Run(ctx context.Context) (workflow.Summary, error)
}

// Daemon serializes sync runs behind the run lock and schedules them.
type Daemon struct {
	runner   Runner
	lock     *RunLock
	schedule cron.Schedule
	expr     string
	logger   *slog.Logger

	watching atomic.Bool
}

// New constructs a daemon. schedule uses standard cron syntax or a
// descriptor such as "@every 6h"; it is only required by Watch.
func New(runner Runner, lockPath, schedule string, logger *slog.Logger) (*Daemon, error) {
	if runner == nil {
		return nil, errors.New("daemon requires a runner")
	}
	if strings.TrimSpace(lockPath) == "" {
		return nil, errors.New("daemon requires a lock path")
	}
	d := &Daemon{
		runner: runner,
		lock:   NewRunLock(lockPath),
		expr:   strings.TrimSpace(schedule),
		logger: logging.NewComponentLogger(logger, "daemon"),
	}
	if d.expr != "" {
		parsed, err := cron.ParseStandard(d.expr)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "daemon", "parse schedule", d.expr, err)
		}
		d.schedule = parsed
	}
	return d, nil
}

// LockPath returns the run lock location.
func (d *Daemon) LockPath() string {
	return d.lock.Path()
}

// RunOnce performs a sync pass while holding the run lock. ErrLocked is
// returned untouched when another process is already syncing.
func (d *Daemon) RunOnce(ctx context.Context) (workflow.Summary, error) {
	if err := d.lock.TryAcquire(); err != nil {
		return workflow.Summary{}, err
	}
	defer func() {
		if err := d.lock.Release(); err != nil {
			d.logger.Warn("failed to release run lock",
				logging.String("lock", d.lock.Path()),
				logging.Error(err),
			)
		}
	}()
	return d.runner.Run(ctx)
}

// Watch runs a sync pass on every tick of the schedule until ctx is
// cancelled, then waits for an in-flight pass to finish. Unless skipInitial
// is set, the first pass starts immediately.
func (d *Daemon) Watch(ctx context.Context, skipInitial bool) error {
	if d.schedule == nil {
		return services.Wrap(services.ErrConfiguration, "daemon", "watch", "no schedule configured", nil)
	}
	if !d.watching.CompareAndSwap(false, true) {
		return errors.New("daemon already watching")
	}
	defer d.watching.Store(false)

	cronLogger := cronLogAdapter{logger: d.logger}
	scheduler := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	job := scheduler.Schedule(d.schedule, cron.FuncJob(func() { d.scheduledRun(ctx) }))

	d.logger.Info("watch started",
		logging.String("schedule", d.expr),
		logging.String("lock", d.lock.Path()),
		logging.Bool("initial_run", !skipInitial),
		logging.String(logging.FieldEventType, "watch_start"),
	)

	if !skipInitial {
		// WrappedJob carries the chain, so the initial pass is serialized
		// with scheduled ones.
		scheduler.Entry(job).WrappedJob.Run()
		if ctx.Err() != nil {
			return nil
		}
	}

	scheduler.Start()
	next := scheduler.Entry(job).Next
	d.logger.Info("next sync scheduled", logging.Time("next_run", next))

	<-ctx.Done()
	stopped := scheduler.Stop()
	<-stopped.Done()
	d.logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stop"))
	return nil
}

func (d *Daemon) scheduledRun(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	summary, err := d.RunOnce(ctx)
	switch {
	case errors.Is(err, ErrLocked):
		logging.WarnWithContext(d.logger, "scheduled sync skipped", "run_skipped_locked",
			logging.String("lock", d.lock.Path()),
			logging.String(logging.FieldErrorHint, "another reviewsync process is syncing; wait for it to finish"),
			logging.String(logging.FieldImpact, "reviews will be picked up on the next tick"),
		)
	case errors.Is(err, context.Canceled):
		d.logger.Debug("scheduled sync interrupted by shutdown")
	case err != nil:
		logging.ErrorWithContext(d.logger, "scheduled sync failed", "run_failed",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'reviewsync config validate'"),
		)
	default:
		d.logger.Debug("scheduled sync finished",
			logging.String(logging.FieldRunID, summary.RunID),
			logging.Int("failures", summary.Failures()),
		)
	}
}

// cronLogAdapter routes scheduler diagnostics into slog.
type cronLogAdapter struct {
	logger *slog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug("scheduler: "+msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(fmt.Sprintf("scheduler: %s", msg), append([]any{logging.Error(err)}, keysAndValues...)...)
}
