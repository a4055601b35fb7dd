package driven

import (
	"context"

	"github.com/halcyon-labs/logfetch-cli/internal/core/domain"
)

// LogsAPI exposes the remote log-export endpoints for one counter.
//
// Every method is a single logical operation: implementations handle
// transport-level retries internally and surface only permanent
// failures (or retry exhaustion). None of the methods loop or poll;
// lifecycle orchestration belongs to the core services.
type LogsAPI interface {
	// Evaluate asks the service whether the spec can be materialized
	// in one request, and how wide a day window it would accept.
	Evaluate(ctx context.Context, spec domain.ExportSpec) (domain.Evaluation, error)

	// CreateRequest submits a new export request and returns the
	// service's view of it, including the assigned request id.
	CreateRequest(ctx context.Context, spec domain.ExportSpec) (domain.LogRequest, error)

	// GetRequest refreshes the state of a submitted request.
	GetRequest(ctx context.Context, requestID int64) (domain.LogRequest, error)

	// ListRequests returns every export request known for the counter.
	ListRequests(ctx context.Context) ([]domain.LogRequest, error)

	// DownloadPart fetches the raw body of one part of a processed
	// request.
	DownloadPart(ctx context.Context, requestID int64, part int) ([]byte, error)

	// CancelRequest aborts a request that has not finished processing.
	CancelRequest(ctx context.Context, requestID int64) error

	// CleanRequest removes the prepared data of a processed request.
	CleanRequest(ctx context.Context, requestID int64) error
}
