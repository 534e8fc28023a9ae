package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/pbmd/forgescan/internal/extractor"
	"github.com/pbmd/forgescan/internal/logging"
	"github.com/pbmd/forgescan/pkg/repometa"
	"github.com/pbmd/forgescan/pkg/swh"
)

// DefaultMaxRateLimitWait caps how long a worker sleeps for a forge quota
// to reset before retrying.
const DefaultMaxRateLimitWait = time.Hour

// MetadataSource resolves a canonical link to repository metadata.
// *repometa.Registry implements it.
type MetadataSource interface {
	RepoInfo(ctx context.Context, link string) (*repometa.RepoInfo, error)
}

// Archive reports the archival status of a canonical link.
// *swh.Client implements it.
type Archive interface {
	Archived(ctx context.Context, link string) (swh.ArchiveStatus, error)
}

// Enrichment is what the enrich stage learns about one link. A nil field
// means that lookup was skipped or failed.
type Enrichment struct {
	Info    *repometa.RepoInfo
	Archive *swh.ArchiveStatus
}

// Enricher looks up repository metadata and archive status for links.
type Enricher struct {
	metadata   MetadataSource
	archive    Archive
	onProgress func(ProgressSummary)
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
	workers    int
	maxWait    time.Duration
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithWorkers sets the number of concurrent lookups.
func WithWorkers(n int) EnricherOption {
	return func(e *Enricher) {
		e.workers = n
	}
}

// WithArchive enables the Software Heritage lookup.
func WithArchive(a Archive) EnricherOption {
	return func(e *Enricher) {
		e.archive = a
	}
}

// WithMaxRateLimitWait caps the sleep before retrying a rate-limited lookup.
func WithMaxRateLimitWait(d time.Duration) EnricherOption {
	return func(e *Enricher) {
		e.maxWait = d
	}
}

// WithProgress registers a callback receiving a summary, with an estimate of
// the remaining time, after each finished task. Every finished task is
// reported; queued and started states may be skipped under load.
func WithProgress(fn func(ProgressSummary)) EnricherOption {
	return func(e *Enricher) {
		e.onProgress = fn
	}
}

// NewEnricher creates an Enricher reading metadata from source.
func NewEnricher(source MetadataSource, options ...EnricherOption) *Enricher {
	e := &Enricher{
		metadata: source,
		workers:  4,
		maxWait:  DefaultMaxRateLimitWait,
		sleep:    sleepContext,
		now:      time.Now,
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Enrich runs every task through the worker pool. The returned slice is
// indexed like tasks' Index fields; its length is n. Per-task failures are
// logged and combined into the returned error without stopping the batch.
func (e *Enricher) Enrich(ctx context.Context, n int, tasks []EnrichTask) ([]Enrichment, error) {
	logger := logging.FromContext(ctx)
	results := make([]Enrichment, n)

	if len(tasks) == 0 {
		return results, nil
	}

	pool := NewWorkerPool(ctx, e.workers, e.enrichOne)
	tracker := NewProgressTracker()

	progressDone := make(chan struct{})

	go func() {
		defer close(progressDone)

		for update := range pool.Progress() {
			tracker.Update(update)

			if e.onProgress != nil && update.Status.Finished() {
				summary := tracker.GetSummary()
				summary.Remaining = tracker.EstimateCompletion()
				e.onProgress(summary)
			}
		}
	}()

	pool.Start()

	go func() {
		if pool.SubmitBatch(tasks) {
			pool.Wait()
			return
		}

		pool.Shutdown()
	}()

	var errs error

	for res := range pool.Results() {
		if res.Result != nil && res.Task.Index >= 0 && res.Task.Index < n {
			results[res.Task.Index] = *res.Result
		}

		if res.Error != nil {
			logger.Warn("enrichment failed", "pmid", res.Task.PMID, "link", res.Task.Link, "err", res.Error)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", res.Task.ID(), res.Error))
		}
	}

	<-progressDone

	stats := pool.GetStats()
	logger.Debug("enrichment pool finished", "workers", stats.NumWorkers, "submitted", stats.TotalTasks, "completed", stats.CompletedTasks)

	if err := ctx.Err(); err != nil {
		return results, multierr.Append(errs, err)
	}

	return results, errs
}

// enrichOne resolves metadata then archive status. A metadata failure does
// not prevent the archive lookup.
func (e *Enricher) enrichOne(ctx context.Context, task EnrichTask) (*Enrichment, error) {
	result := &Enrichment{}

	var errs error

	if e.servesHost(task.Link) {
		info, err := e.withRateLimitRetry(ctx, task, func() (*repometa.RepoInfo, error) {
			return e.metadata.RepoInfo(ctx, task.Link)
		})

		switch {
		case err == nil:
			result.Info = info
		case repometa.IsNotFound(err):
			logging.FromContext(ctx).Debug("repository not found", "pmid", task.PMID, "link", task.Link)
		default:
			errs = multierr.Append(errs, err)
		}
	}

	if e.archive != nil {
		status, err := e.archive.Archived(ctx, task.Link)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			result.Archive = &status
		}
	}

	return result, errs
}

// servesHost reports whether the metadata source can describe link. Sources
// that cannot tell are asked about every link.
func (e *Enricher) servesHost(link string) bool {
	if e.metadata == nil {
		return false
	}

	if h, ok := e.metadata.(interface{ Has(host string) bool }); ok {
		return h.Has(repometa.HostOf(link))
	}

	return true
}

// withRateLimitRetry calls fn and, when the forge reports an exhausted
// quota, sleeps until the reset time (capped at maxWait) and calls fn once
// more.
func (e *Enricher) withRateLimitRetry(ctx context.Context, task EnrichTask, fn func() (*repometa.RepoInfo, error)) (*repometa.RepoInfo, error) {
	info, err := fn()

	resetAt, limited := repometa.RateLimitReset(err)
	if !limited {
		return info, err
	}

	wait := resetAt.Sub(e.now())
	if wait < 0 {
		wait = 0
	}

	if wait > e.maxWait {
		wait = e.maxWait
	}

	logging.FromContext(ctx).Warn("rate limited, waiting", "link", task.Link, "wait", wait.Round(time.Second))

	if err := e.sleep(ctx, wait); err != nil {
		return nil, err
	}

	return fn()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRecordError reports whether err holds per-record failures only, as
// opposed to a canceled run.
func IsRecordError(err error) bool {
	if err == nil {
		return false
	}

	for _, e := range multierr.Errors(err) {
		if errors.Is(e, context.Canceled) || errors.Is(e, context.DeadlineExceeded) {
			return false
		}
	}

	return true
}

// TasksFor builds enrichment tasks for the links that carry a complete
// owner/repository identity. links[i] is the canonical link of record i and
// pmids[i] its PMID.
func TasksFor(pmids, links []string) []EnrichTask {
	tasks := make([]EnrichTask, 0, len(links))

	for i, link := range links {
		if !extractor.Decompose(link).Complete() {
			continue
		}

		task := EnrichTask{Index: i, Link: link}
		if i < len(pmids) {
			task.PMID = pmids[i]
		}

		tasks = append(tasks, task)
	}

	return tasks
}
