// Package services implements the core export workflow.
//
// Three collaborators compose one end-to-end operation:
//
//   - Exporter: the session orchestrator, the only entry point for
//     callers (implements [driving.ExportOrchestrator])
//   - poller: the request lifecycle state machine, polling a submitted
//     request until it reaches a terminal status
//   - fetcher: the bounded-concurrency part downloader, assembling
//     parts in ascending index order
//
// Services depend only on domain types and driven ports; all HTTP
// concerns (auth, retries, rate limiting) are behind [driven.LogsAPI].
package services
