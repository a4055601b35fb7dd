package domain

import (
	"bytes"
	"fmt"
	"io"
	"time"
)

// Source identifies which log stream an export reads from.
type Source string

// Valid export sources.
const (
	SourceVisits Source = "visits"
	SourceHits   Source = "hits"
)

// ParseSource converts a string into a Source.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceVisits, SourceHits:
		return Source(s), nil
	default:
		return "", fmt.Errorf("%w: unknown source %q", ErrInvalidSpec, s)
	}
}

// ExportSpec describes one log slice to materialize server-side.
// It is constructed by the caller and immutable once submitted.
type ExportSpec struct {
	// Source selects the log stream (visits or hits).
	Source Source

	// DateFrom is the first day of the range, inclusive.
	DateFrom time.Time

	// DateTo is the last day of the range, inclusive.
	DateTo time.Time

	// Fields is the ordered set of columns to export.
	Fields []string
}

// Validate checks the spec before any network call is made.
// The service only materializes complete days, so the range must end
// strictly before today.
func (s ExportSpec) Validate() error {
	if _, err := ParseSource(string(s.Source)); err != nil {
		return err
	}
	if s.DateFrom.IsZero() || s.DateTo.IsZero() {
		return fmt.Errorf("%w: date range is required", ErrInvalidSpec)
	}
	if s.DateFrom.After(s.DateTo) {
		return fmt.Errorf("%w: date from %s is after date to %s",
			ErrInvalidSpec, s.DateFrom.Format(DateLayout), s.DateTo.Format(DateLayout))
	}
	today := time.Now().Truncate(24 * time.Hour)
	if !s.DateTo.Before(today) {
		return fmt.Errorf("%w: date to must be before today", ErrInvalidSpec)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: at least one field is required", ErrInvalidSpec)
	}
	return nil
}

// WithRange returns a copy of the spec covering a different date range.
// Used when a large request is split into day windows.
func (s ExportSpec) WithRange(r DateRange) ExportSpec {
	s.DateFrom = r.From
	s.DateTo = r.To
	return s
}

// DateLayout is the wire format for export dates.
const DateLayout = "2006-01-02"

// Status is the remote-reported state of a submitted export request.
type Status string

// Statuses reported by the service.
const (
	StatusNew              Status = "new"
	StatusCreated          Status = "created"
	StatusAwaitingRetry    Status = "awaiting_retry"
	StatusProcessed        Status = "processed"
	StatusCanceled         Status = "canceled"
	StatusProcessingFailed Status = "processing_failed"
	StatusCleanedByUser    Status = "cleaned_by_user"
	StatusCleanedTooOld    Status = "cleaned_automatically_as_too_old"
)

// Terminal reports whether no further polling is meaningful.
func (s Status) Terminal() bool {
	switch s {
	case StatusNew, StatusCreated, StatusAwaitingRetry:
		return false
	default:
		return true
	}
}

// FailureError maps a terminal failure status to its sentinel error.
// It returns nil for StatusProcessed and for non-terminal statuses.
func (s Status) FailureError() error {
	switch s {
	case StatusCanceled:
		return ErrExportCanceled
	case StatusProcessingFailed:
		return ErrProcessingFailed
	case StatusCleanedByUser, StatusCleanedTooOld:
		return ErrCleanedByUser
	default:
		return nil
	}
}

// Part describes one chunk of a processed log, as declared by the
// service once the request reaches StatusProcessed.
type Part struct {
	// Number is the 0-based part index.
	Number int

	// Size is the declared byte size of the part.
	Size int64
}

// LogRequest is the remote service's view of a submitted export.
// It is refreshed by polling; Parts is populated only once the
// request is processed.
type LogRequest struct {
	RequestID int64
	CounterID int64
	Source    Source
	DateFrom  time.Time
	DateTo    time.Time
	Fields    []string
	Status    Status
	Size      int64
	Parts     []Part
}

// Evaluation is the service's pre-flight answer for an export spec.
type Evaluation struct {
	// Possible is true when the range fits into a single request.
	Possible bool

	// MaxDays is the widest day window the service will accept for
	// this counter. Zero means the export cannot be materialized.
	MaxDays int

	// ExpectedSize is the estimated byte size of the export.
	ExpectedSize int64
}

// LogDocument is the ordered concatenation of all fetched parts.
// It is only ever built from a complete part set: no gaps, no
// duplicates. Part bodies are kept verbatim; interpreting them is
// the consumer's concern.
type LogDocument struct {
	parts [][]byte
}

// NewLogDocument builds a document from part bodies already in
// ascending part order.
func NewLogDocument(parts [][]byte) *LogDocument {
	return &LogDocument{parts: parts}
}

// Append adds further parts after the existing ones. Used when an
// export is split into day windows and the window documents are
// stitched back together in window order.
func (d *LogDocument) Append(parts [][]byte) {
	d.parts = append(d.parts, parts...)
}

// PartCount returns the number of parts in the document.
func (d *LogDocument) PartCount() int {
	return len(d.parts)
}

// Size returns the total byte size of the document.
func (d *LogDocument) Size() int64 {
	var n int64
	for _, p := range d.parts {
		n += int64(len(p))
	}
	return n
}

// Reader streams the parts in order without copying them.
func (d *LogDocument) Reader() io.Reader {
	readers := make([]io.Reader, len(d.parts))
	for i, p := range d.parts {
		readers[i] = bytes.NewReader(p)
	}
	return io.MultiReader(readers...)
}

// Bytes returns the concatenated document body.
func (d *LogDocument) Bytes() []byte {
	buf := make([]byte, 0, d.Size())
	for _, p := range d.parts {
		buf = append(buf, p...)
	}
	return buf
}
