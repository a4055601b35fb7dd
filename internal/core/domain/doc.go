// Package domain defines the core business entities for logfetch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ExportSpec: A caller-defined log slice to materialize remotely
//   - LogRequest: The service's view of a submitted export
//   - Status: The lifecycle state of a submitted request
//   - LogDocument: The ordered concatenation of downloaded parts
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
