package driving

import (
	"context"

	"github.com/halcyon-labs/logfetch-cli/internal/core/domain"
)

// ExportOrchestrator runs the end-to-end export workflow:
// create the request, poll it to completion, download the parts,
// and clean up after itself.
type ExportOrchestrator interface {
	// Export materializes and downloads one log slice.
	// It returns the complete document or the first failure;
	// no partial document is ever returned.
	Export(ctx context.Context, spec domain.ExportSpec) (*domain.LogDocument, error)

	// Clean cancels or cleans every export request known for the
	// counter. Per-request failures are logged and skipped.
	Clean(ctx context.Context) error

	// Stats reports accounting for the exports run so far.
	Stats() ExportStats
}

// ExportStats is byte/part accounting for an orchestrator instance.
type ExportStats struct {
	// Requests is the number of export requests completed.
	Requests int

	// Parts is the number of parts downloaded.
	Parts int

	// BytesLoaded is the total size of all downloaded parts.
	BytesLoaded int64
}
