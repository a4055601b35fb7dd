package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent export lifecycle failures.
// These are distinct from transport errors, which live with the
// connector that produces them.
var (
	// ErrInvalidSpec indicates a malformed export specification.
	// Raised before any network call is made.
	ErrInvalidSpec = errors.New("invalid export spec")

	// ErrSubmissionRejected indicates the service refused to create
	// the export request.
	ErrSubmissionRejected = errors.New("export request rejected")

	// ErrExportImpossible indicates the service cannot materialize
	// the requested range at all (evaluation returned a zero window).
	ErrExportImpossible = errors.New("export cannot be materialized")

	// ErrPollTimeout indicates the overall polling deadline elapsed
	// before the request reached a terminal status.
	ErrPollTimeout = errors.New("polling deadline exceeded")

	// Terminal failure statuses.

	// ErrExportCanceled indicates the request was canceled server-side.
	ErrExportCanceled = errors.New("export request canceled")

	// ErrProcessingFailed indicates the service failed to materialize
	// the request.
	ErrProcessingFailed = errors.New("export processing failed")

	// ErrCleanedByUser indicates the request's data was removed before
	// it could be downloaded.
	ErrCleanedByUser = errors.New("export request cleaned before download")
)

// IncompleteExportError reports parts that could not be downloaded
// after the retry budget was spent. No partial document accompanies
// it: a gap would silently corrupt downstream consumers.
type IncompleteExportError struct {
	RequestID int64
	Missing   []int
}

func (e *IncompleteExportError) Error() string {
	idx := make([]string, len(e.Missing))
	for i, n := range e.Missing {
		idx[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("export %d incomplete: missing parts [%s]",
		e.RequestID, strings.Join(idx, " "))
}

// IsIncompleteExport checks whether the error reports missing parts.
func IsIncompleteExport(err error) bool {
	var incomplete *IncompleteExportError
	return errors.As(err, &incomplete)
}
