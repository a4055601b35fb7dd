package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/logfetch-cli/internal/core/domain"
	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driven"
)

// poller is the request lifecycle state machine. A submitted request
// stays in created/awaiting_retry while the service materializes it;
// poller refreshes the status once per interval until a terminal
// status is observed or the overall deadline elapses.
//
// Polls for one request are strictly sequential. Each individual poll
// call carries its own transport retry budget inside the connector;
// the overall deadline here is outer to and independent of it.
type poller struct {
	api      driven.LogsAPI
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// await polls the request until it reaches a terminal status and
// returns the last observed state. A spent deadline returns
// [domain.ErrPollTimeout]; the caller decides whether to cancel the
// remote request.
func (p *poller) await(ctx context.Context, requestID int64) (domain.LogRequest, error) {
	deadline := time.NewTimer(p.timeout)
	defer deadline.Stop()

	for {
		req, err := p.api.GetRequest(ctx, requestID)
		if err != nil {
			return domain.LogRequest{}, fmt.Errorf("poll request %d: %w", requestID, err)
		}

		p.log.Debug().
			Int64("request_id", requestID).
			Str("status", string(req.Status)).
			Msg("polled request")

		if req.Status.Terminal() {
			return req, nil
		}

		wait := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return req, ctx.Err()
		case <-deadline.C:
			wait.Stop()
			return req, fmt.Errorf("request %d still %s after %s: %w",
				requestID, req.Status, p.timeout, domain.ErrPollTimeout)
		case <-wait.C:
		}
	}
}
