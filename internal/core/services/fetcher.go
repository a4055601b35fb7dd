package services

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/halcyon-labs/logfetch-cli/internal/core/domain"
	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driven"
)

// fetcher downloads the declared parts of a processed request with
// bounded concurrency and assembles them in ascending part order,
// regardless of completion order.
type fetcher struct {
	api         driven.LogsAPI
	concurrency int
	log         zerolog.Logger
}

// fetchAll downloads every part and returns the bodies indexed in
// part order. A part that fails after the connector's retry budget
// does not cancel its siblings: the remaining parts finish (or fail)
// and the whole call reports every missing index via
// [*domain.IncompleteExportError]. Caller cancellation aborts
// outstanding downloads and propagates the context error instead.
// No partial result is ever returned.
func (f *fetcher) fetchAll(ctx context.Context, requestID int64, parts []domain.Part) ([][]byte, error) {
	ordered := make([]domain.Part, len(parts))
	copy(ordered, parts)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	bodies := make([][]byte, len(ordered))

	var mu sync.Mutex
	var failed []int

	var group errgroup.Group
	group.SetLimit(f.concurrency)

	for i, part := range ordered {
		i, part := i, part
		group.Go(func() error {
			body, err := f.api.DownloadPart(ctx, requestID, part.Number)
			if err != nil {
				f.log.Warn().
					Int64("request_id", requestID).
					Int("part", part.Number).
					Err(err).
					Msg("part download failed")
				mu.Lock()
				failed = append(failed, part.Number)
				mu.Unlock()
				return nil
			}

			f.log.Debug().
				Int64("request_id", requestID).
				Int("part", part.Number).
				Int("bytes", len(body)).
				Msg("downloaded part")

			bodies[i] = body
			return nil
		})
	}

	// Errors are collected per part; Wait only synchronizes.
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		sort.Ints(failed)
		return nil, &domain.IncompleteExportError{RequestID: requestID, Missing: failed}
	}
	return bodies, nil
}
