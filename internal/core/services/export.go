package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/halcyon-labs/logfetch-cli/internal/core/domain"
	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driving"
)

// cleanupTimeout bounds best-effort cancel/clean calls issued after
// the export itself has already succeeded or failed.
const cleanupTimeout = 30 * time.Second

// Ensure Exporter implements the interface.
var _ driving.ExportOrchestrator = (*Exporter)(nil)

// Exporter coordinates the end-to-end export workflow: evaluate,
// create, poll to a terminal status, download parts, clean up.
type Exporter struct {
	api  driven.LogsAPI
	opts Options
	log  zerolog.Logger

	mu    sync.Mutex
	stats driving.ExportStats
}

// NewExporter creates an export orchestrator. Zero option fields fall
// back to the documented defaults.
func NewExporter(api driven.LogsAPI, opts Options, log zerolog.Logger) *Exporter {
	return &Exporter{
		api:  api,
		opts: opts.normalize(),
		log:  log,
	}
}

// Export materializes and downloads one log slice.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (e *Exporter) Export(ctx context.Context, spec domain.ExportSpec) (*domain.LogDocument, error) {
	log := e.log.With().Str("session_id", uuid.NewString()).Logger()

	// 1. Validate before any network call.
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("source", string(spec.Source)).
		Str("date_from", spec.DateFrom.Format(domain.DateLayout)).
		Str("date_to", spec.DateTo.Format(domain.DateLayout)).
		Int("fields", len(spec.Fields)).
		Msg("starting export")

	// 2. Pre-flight evaluation: can the range go out as one request?
	evaluation, err := e.api.Evaluate(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("evaluate export: %w", err)
	}
	if evaluation.MaxDays == 0 {
		return nil, fmt.Errorf("%w: service reports a zero-day window", domain.ErrExportImpossible)
	}

	// 3. Split into day windows when the range is too large.
	windows := []domain.DateRange{{From: spec.DateFrom, To: spec.DateTo}}
	if !evaluation.Possible {
		windows = domain.DayWindows(spec.DateFrom, spec.DateTo, evaluation.MaxDays)
		log.Info().
			Int("windows", len(windows)).
			Int("max_days", evaluation.MaxDays).
			Msg("range exceeds a single request, splitting")
	}

	// 4. Export each window and stitch the documents in window order.
	doc := domain.NewLogDocument(nil)
	for _, window := range windows {
		bodies, err := e.exportWindow(ctx, log, spec.WithRange(window))
		if err != nil {
			return nil, err
		}
		doc.Append(bodies)
	}

	log.Info().
		Int("parts", doc.PartCount()).
		Int64("bytes", doc.Size()).
		Msg("export complete")

	return doc, nil
}

// exportWindow runs the full lifecycle for one create-sized window.
func (e *Exporter) exportWindow(ctx context.Context, log zerolog.Logger, spec domain.ExportSpec) ([][]byte, error) {
	// 1. Create the remote request.
	req, err := e.api.CreateRequest(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSubmissionRejected, err)
	}

	log.Info().
		Int64("request_id", req.RequestID).
		Str("date_from", spec.DateFrom.Format(domain.DateLayout)).
		Str("date_to", spec.DateTo.Format(domain.DateLayout)).
		Msg("created export request")

	// 2. Poll until the service reaches a terminal status.
	p := &poller{
		api:      e.api,
		interval: e.opts.PollInterval,
		timeout:  e.opts.OverallTimeout,
		log:      log,
	}
	requestID := req.RequestID
	req, err = p.await(ctx, requestID)
	if err != nil {
		// A request abandoned mid-processing keeps consuming the
		// counter's quota; cancel it before giving up.
		if errors.Is(err, domain.ErrPollTimeout) || errors.Is(err, context.Canceled) {
			e.cancelRemote(log, requestID)
		}
		return nil, err
	}

	// 3. Only a processed request has parts to download.
	if req.Status != domain.StatusProcessed {
		if failure := req.Status.FailureError(); failure != nil {
			return nil, fmt.Errorf("request %d: %w", req.RequestID, failure)
		}
		return nil, fmt.Errorf("request %d: unexpected terminal status %q", req.RequestID, req.Status)
	}

	log.Info().
		Int64("request_id", req.RequestID).
		Int("parts", len(req.Parts)).
		Int64("size", req.Size).
		Msg("request processed")

	// 4. Download all parts.
	f := &fetcher{api: e.api, concurrency: e.opts.PartConcurrency, log: log}
	bodies, err := f.fetchAll(ctx, req.RequestID, req.Parts)
	if err != nil {
		return nil, err
	}

	e.recordDownload(bodies)

	// 5. Best-effort cleanup of the prepared data.
	if e.opts.CleanupAfterFetch {
		e.cleanRemote(log, req)
	}

	return bodies, nil
}

// Clean cancels or cleans every export request known for the counter.
func (e *Exporter) Clean(ctx context.Context) error {
	requests, err := e.api.ListRequests(ctx)
	if err != nil {
		return fmt.Errorf("list requests: %w", err)
	}

	for _, req := range requests {
		if err := e.disposeRequest(ctx, req); err != nil {
			e.log.Warn().
				Int64("request_id", req.RequestID).
				Str("status", string(req.Status)).
				Err(err).
				Msg("cannot clean request")
		}
	}
	return nil
}

// Stats reports accounting for the exports run so far.
func (e *Exporter) Stats() driving.ExportStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Exporter) recordDownload(bodies [][]byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.Requests++
	e.stats.Parts += len(bodies)
	for _, b := range bodies {
		e.stats.BytesLoaded += int64(len(b))
	}
}

// disposeRequest picks the right teardown call for a request's state:
// processed data is cleaned, pending requests are canceled, anything
// else needs no action.
func (e *Exporter) disposeRequest(ctx context.Context, req domain.LogRequest) error {
	switch {
	case req.Status == domain.StatusProcessed:
		return e.api.CleanRequest(ctx, req.RequestID)
	case !req.Status.Terminal():
		return e.api.CancelRequest(ctx, req.RequestID)
	default:
		return nil
	}
}

// cancelRemote aborts a still-processing request. Best effort: runs on
// a detached context so it survives caller cancellation, and failures
// are logged, never raised.
func (e *Exporter) cancelRemote(log zerolog.Logger, requestID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := e.api.CancelRequest(ctx, requestID); err != nil {
		log.Warn().Int64("request_id", requestID).Err(err).Msg("cannot cancel request")
		return
	}
	log.Info().Int64("request_id", requestID).Msg("canceled request")
}

// cleanRemote removes the prepared data after a successful download.
// Best effort: a failure never invalidates the obtained document.
func (e *Exporter) cleanRemote(log zerolog.Logger, req domain.LogRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := e.api.CleanRequest(ctx, req.RequestID); err != nil {
		log.Warn().Int64("request_id", req.RequestID).Err(err).Msg("cannot clean request")
		return
	}
	log.Info().Int64("request_id", req.RequestID).Msg("cleaned request")
}
