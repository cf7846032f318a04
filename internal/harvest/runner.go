package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/papertrawl/internal/domain"
	"github.com/timmy/papertrawl/internal/logger"
	"github.com/timmy/papertrawl/internal/oai"
	"github.com/timmy/papertrawl/internal/partition"
	"github.com/timmy/papertrawl/internal/repository"
	"github.com/timmy/papertrawl/internal/state"
)

const dateLayout = "2006-01-02"

// ScopeFetcher is the pagination contract the runner composes over,
// implemented by Pager.
type ScopeFetcher interface {
	FetchScope(ctx context.Context, scope oai.Scope) ([]domain.Record, error)
	FetchNext(ctx context.Context, token string) ([]domain.Record, string, error)
}

// Config holds configuration for the harvest loop.
type Config struct {
	Mode             domain.HarvestMode
	EpochDate        string
	FreshnessLagDays int
	TimeBudget       time.Duration
	DataDir          string
}

// Runner is the top-level harvest controller. It loads the checkpoint,
// drives the pager one unit of work at a time (a calendar date or a token
// batch), flushes each completed unit through the partition writer, and
// advances the checkpoint only after the unit is durable. The wall-clock
// budget is checked before each new unit, never mid-page.
type Runner struct {
	fetcher  ScopeFetcher
	store    *state.Store
	writer   *partition.Writer
	uploader *partition.Uploader
	runs     *repository.RunRepository
	cfg      Config

	// now is injectable so tests can steer the budget clock.
	now func() time.Time
}

// NewRunner creates a Runner.
// Parameters:
//   - fetcher: pagination driver.
//   - store: checkpoint persistence.
//   - writer: date-partition writer rooted at cfg.DataDir.
//   - uploader: object-store mirror, no-op when not configured.
//   - runs: run bookkeeping repository; may be nil to skip bookkeeping.
//   - cfg: harvest configuration; zero fields fall back to defaults.
//
// Returns:
//   - *Runner: initialized harvest controller.
func NewRunner(fetcher ScopeFetcher, store *state.Store, writer *partition.Writer, uploader *partition.Uploader, runs *repository.RunRepository, cfg Config) *Runner {
	if cfg.Mode == "" {
		cfg.Mode = domain.ModeDate
	}
	if cfg.EpochDate == "" {
		cfg.EpochDate = "1991-08-14"
	}
	if cfg.FreshnessLagDays <= 0 {
		cfg.FreshnessLagDays = 2
	}
	if cfg.TimeBudget <= 0 {
		cfg.TimeBudget = 5*time.Hour + 30*time.Minute
	}
	return &Runner{
		fetcher:  fetcher,
		store:    store,
		writer:   writer,
		uploader: uploader,
		runs:     runs,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run executes one time-budgeted harvest invocation.
//
// The returned flag reports whether more work remains: true maps to the
// "needs continuation" process signal so the external invoker schedules
// another run. Recoverable interruptions (transient transport failures,
// budget exhaustion, cancellation) return (true, nil) with all confirmed
// progress checkpointed; fatal protocol or request errors checkpoint,
// flush whatever durable artifact exists, and return the error.
func (r *Runner) Run(ctx context.Context) (bool, error) {
	start := r.now()

	run := &domain.HarvestRun{
		ID:        uuid.New().String(),
		Mode:      r.cfg.Mode,
		Status:    domain.RunStatusRunning,
		StartedAt: &start,
	}
	if r.runs != nil {
		if err := r.runs.Create(ctx, run); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Failed to record harvest run")
		}
	}
	ctx = logger.SetRunID(ctx, run.ID)
	ctx = logger.SetMode(ctx, string(r.cfg.Mode))

	var cp domain.Checkpoint
	if err := r.store.Load(ctx, state.NamespaceHarvest, &cp); err != nil {
		return r.finish(ctx, run, false, err)
	}
	if cp.Mode == "" {
		cp.Mode = r.cfg.Mode
	}
	if cp.Mode != r.cfg.Mode {
		return r.finish(ctx, run, false,
			fmt.Errorf("checkpoint mode %q does not match configured mode %q", cp.Mode, r.cfg.Mode))
	}

	var more bool
	var err error
	switch cp.Mode {
	case domain.ModeGlobal:
		more, err = r.runGlobal(ctx, start, &cp, run)
	default:
		more, err = r.runDate(ctx, start, &cp, run)
	}
	return r.finish(ctx, run, more, err)
}

func (r *Runner) finish(ctx context.Context, run *domain.HarvestRun, more bool, err error) (bool, error) {
	end := r.now()
	run.FinishedAt = &end
	run.NeedsContinuation = more
	switch {
	case err != nil:
		run.Status = domain.RunStatusFailed
		run.ErrorLog = err.Error()
	case more:
		run.Status = domain.RunStatusContinuation
	default:
		run.Status = domain.RunStatusCompleted
	}
	if r.runs != nil {
		if uerr := r.runs.Update(ctx, run); uerr != nil {
			logger.FromContext(ctx).WithError(uerr).Warn("Failed to update harvest run")
		}
	}
	logger.With(logger.Fields{"total": run.RecordsHarvested}).
		WithStatus(string(run.Status)).
		WithDuration(end.Sub(*run.StartedAt).Milliseconds()).
		Info(ctx, "Harvest run finished")
	return more, err
}

func (r *Runner) budgetExhausted(start time.Time) bool {
	return r.now().Sub(start) >= r.cfg.TimeBudget
}

// recoverable reports whether the run can simply resume later. The current
// unit's partial records are discarded; everything already checkpointed is
// durable.
func recoverable(err error) bool {
	return oai.IsTransient(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// runDate walks every calendar date from the epoch up to today minus the
// freshness lag, skipping dates the checkpoint already covers. Each date is
// one unit of work: fetched to exhaustion, written as one partition, then
// marked fetched — in that order, so the checkpoint never claims a date
// whose artifact is not durable.
func (r *Runner) runDate(ctx context.Context, start time.Time, cp *domain.Checkpoint, run *domain.HarvestRun) (bool, error) {
	epoch, err := time.Parse(dateLayout, r.cfg.EpochDate)
	if err != nil {
		return false, fmt.Errorf("invalid epoch date %q: %w", r.cfg.EpochDate, err)
	}
	end := r.now().UTC().AddDate(0, 0, -r.cfg.FreshnessLagDays)

	for d := epoch; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		if cp.HasFetched(date) {
			continue
		}

		if r.budgetExhausted(start) {
			logger.FromContext(ctx).WithField("next_date", date).Info("Time budget exhausted, deferring to next invocation")
			return true, nil
		}

		dctx := logger.SetScope(ctx, date)
		records, err := r.fetchDate(dctx, date)
		if err != nil {
			if serr := r.store.Save(dctx, state.NamespaceHarvest, cp); serr != nil {
				logger.FromContext(dctx).WithError(serr).Error("Failed to checkpoint before surfacing error")
			}
			if recoverable(err) {
				logger.FromContext(dctx).WithError(err).Warn("Recoverable failure, deferring to next invocation")
				return true, nil
			}
			return false, err
		}

		path, err := r.writer.WritePartition(date, records)
		if err != nil {
			return false, err
		}
		if uerr := r.uploader.UploadIfConfigured(dctx, path); uerr != nil {
			logger.FromContext(dctx).WithError(uerr).Warn("Upload failed, artifact remains local")
		}

		cp.MarkFetched(date)
		if err := r.store.Save(ctx, state.NamespaceHarvest, cp); err != nil {
			return false, err
		}

		run.Batches++
		run.DatesCompleted++
		run.RecordsHarvested += len(records)
		logger.With(logger.Fields{"total": run.RecordsHarvested}).
			WithCount(len(records)).
			Info(dctx, "Date partition complete")
	}

	logger.FromContext(ctx).WithField("last_date", cp.LastDate).Info("Harvest caught up")
	return false, nil
}

// fetchDate fetches one date scope, restarting it once from scratch if the
// remote host no longer recognizes the scope's token chain.
func (r *Runner) fetchDate(ctx context.Context, date string) ([]domain.Record, error) {
	records, err := r.fetcher.FetchScope(ctx, oai.ScopeDate(date))
	if err != nil && oai.IsStaleToken(err) {
		logger.FromContext(ctx).Warn("Stale resumption token, restarting scope")
		records, err = r.fetcher.FetchScope(ctx, oai.ScopeDate(date))
	}
	return records, err
}

// runGlobal follows the single corpus-wide token chain, appending each
// batch to the running artifact and checkpointing the handed-off token
// before the next request goes out. A stale token here is fatal: with no
// date scoping there is nothing narrower than the whole corpus to restart.
func (r *Runner) runGlobal(ctx context.Context, start time.Time, cp *domain.Checkpoint, run *domain.HarvestRun) (bool, error) {
	if cp.BatchNum > 0 && cp.ResumptionToken == "" {
		logger.FromContext(ctx).WithField("total", cp.TotalHarvested).Info("Corpus already fully harvested")
		return false, nil
	}

	resume := cp.ResumptionToken != ""
	app, err := partition.OpenAppender(r.cfg.DataDir, resume)
	if err != nil {
		return false, err
	}
	closed := false
	closeApp := func() {
		if closed {
			return
		}
		closed = true
		if cerr := app.Close(); cerr != nil {
			logger.FromContext(ctx).WithError(cerr).Warn("Failed to close running artifact")
		}
	}
	defer closeApp()

	token := cp.ResumptionToken
	for {
		if r.budgetExhausted(start) {
			logger.FromContext(ctx).WithField(logger.FieldBatch, cp.BatchNum).Info("Time budget exhausted, deferring to next invocation")
			return true, nil
		}

		records, next, err := r.fetcher.FetchNext(ctx, token)
		if err != nil {
			if serr := r.store.Save(ctx, state.NamespaceHarvest, cp); serr != nil {
				logger.FromContext(ctx).WithError(serr).Error("Failed to checkpoint before surfacing error")
			}
			if recoverable(err) {
				logger.FromContext(ctx).WithError(err).Warn("Recoverable failure, deferring to next invocation")
				return true, nil
			}
			// Flush whatever durable artifact exists before propagating.
			closeApp()
			if uerr := r.uploader.UploadIfConfigured(ctx, app.Path()); uerr != nil {
				logger.FromContext(ctx).WithError(uerr).Warn("Final upload failed")
			}
			return false, err
		}

		if err := app.Append(records); err != nil {
			return false, err
		}

		cp.BatchNum++
		cp.TotalHarvested += len(records)
		cp.ResumptionToken = next
		if err := r.store.Save(ctx, state.NamespaceHarvest, cp); err != nil {
			return false, err
		}

		run.Batches++
		run.RecordsHarvested += len(records)
		logger.With(logger.Fields{"total": cp.TotalHarvested}).
			WithBatch(cp.BatchNum).
			WithCount(len(records)).
			Info(ctx, "Batch complete")

		if next == "" {
			closeApp()
			if uerr := r.uploader.UploadIfConfigured(ctx, app.Path()); uerr != nil {
				logger.FromContext(ctx).WithError(uerr).Warn("Upload failed, artifact remains local")
			}
			logger.FromContext(ctx).WithField("total", cp.TotalHarvested).Info("Harvest complete")
			return false, nil
		}
		token = next
	}
}
