package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/usecase/aggregate"
	"haber-radar/internal/usecase/persist"
)

// Sweeper runs a full sweep over the registry.
type Sweeper interface {
	ScrapeAll(ctx context.Context, onProgress aggregate.ProgressFunc) (*aggregate.Result, error)
}

// Upserter persists sweep results.
type Upserter interface {
	UpsertAll(ctx context.Context, items []entity.NewsItem) persist.UpsertResult
}

// ActiveCounter reports how many records are stored.
type ActiveCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// SweepJob is the scheduled unit of work: sweep every source, upsert the
// results and publish the outcome. Overlapping runs are skipped.
type SweepJob struct {
	Sweeper  Sweeper
	Upserter Upserter
	Counter  ActiveCounter // optional
	Metrics  *WorkerMetrics
	Health   *HealthServer // optional
	Timeout  time.Duration
	Logger   *slog.Logger
	Now      func() time.Time

	running atomic.Bool
}

// Run executes one sweep. It returns false when a previous run is still in
// progress.
func (j *SweepJob) Run(ctx context.Context) bool {
	if !j.running.CompareAndSwap(false, true) {
		j.Logger.Warn("previous sweep still running, skipping")
		j.Metrics.RecordSweepRun("skipped")
		return false
	}
	defer j.running.Store(false)

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	start := now()
	j.Logger.Info("sweep started")

	lastLogged := 0
	res, err := j.Sweeper.ScrapeAll(ctx, func(p aggregate.Progress) {
		// log every tenth source and the last one
		if p.Current == p.Total || p.Current-lastLogged >= 10 {
			lastLogged = p.Current
			j.Logger.Info("sweep progress",
				slog.Int("current", p.Current),
				slog.Int("total", p.Total),
				slog.String("source", p.SourceKey),
				slog.Int("items", p.ItemsFound))
		}
	})
	if err != nil {
		j.finish(now, start, false, nil, persist.UpsertResult{})
		j.Logger.Error("sweep failed",
			slog.Duration("duration", now().Sub(start)),
			slog.Any("error", err))
		return true
	}

	up := j.Upserter.UpsertAll(ctx, res.Items)
	j.finish(now, start, true, res, up)

	if j.Counter != nil {
		if n, err := j.Counter.CountActive(ctx); err == nil {
			metrics.UpdateNewsStored(int(n))
		}
	}

	j.Logger.Info("sweep completed",
		slog.Int("items", res.Count),
		slog.Int("inserted", up.Inserted),
		slog.Int("duplicates", up.Duplicates),
		slog.Int("upsert_errors", len(up.Errors)),
		slog.Int("failed_sources", len(res.Failures)),
		slog.Duration("duration", now().Sub(start)))
	return true
}

func (j *SweepJob) finish(now func() time.Time, start time.Time, ok bool, res *aggregate.Result, up persist.UpsertResult) {
	j.Metrics.RecordSweepDuration(now().Sub(start).Seconds())

	status := SweepStatus{FinishedAt: now(), Success: ok}
	if ok {
		j.Metrics.RecordSweepRun("success")
		j.Metrics.RecordSweepItems(res.Count, up.Inserted, up.Duplicates, len(up.Errors))
		j.Metrics.RecordFailedSources(len(res.Failures))
		j.Metrics.RecordLastSuccess()
		status.Items = res.Count
		status.Inserted = up.Inserted
		status.Failures = len(res.Failures)
	} else {
		j.Metrics.RecordSweepRun("failure")
	}

	if j.Health != nil {
		j.Health.RecordSweep(status)
	}
}
