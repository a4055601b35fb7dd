package metrika

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/halcyon-labs/logfetch-cli/internal/core/domain"
	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driven"
)

// Ensure Client implements the port.
var _ driven.LogsAPI = (*Client)(nil)

// logRequestJSON is the wire form of a log request, as carried in the
// "log_request" envelope of create/status/cancel/clean responses.
type logRequestJSON struct {
	RequestID int64    `json:"request_id"`
	CounterID int64    `json:"counter_id"`
	Source    string   `json:"source"`
	Date1     string   `json:"date1"`
	Date2     string   `json:"date2"`
	Fields    []string `json:"fields"`
	Status    string   `json:"status"`
	Size      int64    `json:"size"`
	Parts     []struct {
		PartNumber int   `json:"part_number"`
		Size       int64 `json:"size"`
	} `json:"parts"`
}

func (r logRequestJSON) toDomain() domain.LogRequest {
	req := domain.LogRequest{
		RequestID: r.RequestID,
		CounterID: r.CounterID,
		Source:    domain.Source(r.Source),
		Fields:    r.Fields,
		Status:    domain.Status(strings.ToLower(r.Status)),
		Size:      r.Size,
	}
	if t, err := time.Parse(domain.DateLayout, r.Date1); err == nil {
		req.DateFrom = t
	}
	if t, err := time.Parse(domain.DateLayout, r.Date2); err == nil {
		req.DateTo = t
	}
	for _, p := range r.Parts {
		req.Parts = append(req.Parts, domain.Part{Number: p.PartNumber, Size: p.Size})
	}
	return req
}

// specQuery builds the create/evaluate query parameters for a spec.
func specQuery(spec domain.ExportSpec) url.Values {
	return url.Values{
		"date1":  {spec.DateFrom.Format(domain.DateLayout)},
		"date2":  {spec.DateTo.Format(domain.DateLayout)},
		"source": {string(spec.Source)},
		"fields": {strings.Join(spec.Fields, ",")},
	}
}

// Evaluate asks whether the spec fits into a single request.
func (c *Client) Evaluate(ctx context.Context, spec domain.ExportSpec) (domain.Evaluation, error) {
	var resp struct {
		Evaluation struct {
			Possible             bool  `json:"possible"`
			MaxPossibleDayQty    int   `json:"max_possible_day_quantity"`
			ExpectedSize         int64 `json:"expected_size"`
			LogRequestSumMaxSize int64 `json:"log_request_sum_max_size"`
			LogRequestSumSize    int64 `json:"log_request_sum_size"`
		} `json:"log_request_evaluation"`
	}
	err := c.call(ctx, "evaluate", http.MethodGet, "logrequests/evaluate", specQuery(spec), &resp)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return domain.Evaluation{
		Possible:     resp.Evaluation.Possible,
		MaxDays:      resp.Evaluation.MaxPossibleDayQty,
		ExpectedSize: resp.Evaluation.ExpectedSize,
	}, nil
}

// CreateRequest submits a new export request.
func (c *Client) CreateRequest(ctx context.Context, spec domain.ExportSpec) (domain.LogRequest, error) {
	var resp struct {
		LogRequest logRequestJSON `json:"log_request"`
	}
	err := c.call(ctx, "create request", http.MethodPost, "logrequests", specQuery(spec), &resp)
	if err != nil {
		return domain.LogRequest{}, err
	}
	if resp.LogRequest.RequestID == 0 {
		return domain.LogRequest{}, fmt.Errorf("create request: no request id in response")
	}
	return resp.LogRequest.toDomain(), nil
}

// GetRequest refreshes the state of a submitted request.
func (c *Client) GetRequest(ctx context.Context, requestID int64) (domain.LogRequest, error) {
	var resp struct {
		LogRequest logRequestJSON `json:"log_request"`
	}
	path := "logrequest/" + strconv.FormatInt(requestID, 10)
	if err := c.call(ctx, "get request", http.MethodGet, path, nil, &resp); err != nil {
		return domain.LogRequest{}, err
	}
	return resp.LogRequest.toDomain(), nil
}

// ListRequests returns every export request known for the counter.
func (c *Client) ListRequests(ctx context.Context) ([]domain.LogRequest, error) {
	var resp struct {
		Requests []logRequestJSON `json:"requests"`
	}
	if err := c.call(ctx, "list requests", http.MethodGet, "logrequests", nil, &resp); err != nil {
		return nil, err
	}
	requests := make([]domain.LogRequest, 0, len(resp.Requests))
	for _, r := range resp.Requests {
		requests = append(requests, r.toDomain())
	}
	return requests, nil
}

// DownloadPart fetches the raw body of one part.
func (c *Client) DownloadPart(ctx context.Context, requestID int64, part int) ([]byte, error) {
	endpoint := c.counterURL(
		fmt.Sprintf("logrequest/%d/part/%d/download", requestID, part), nil)

	var body []byte
	op := fmt.Sprintf("download part %d", part)
	err := c.retry.Do(ctx, op, func(ctx context.Context) error {
		var sendErr error
		body, sendErr = c.send(ctx, http.MethodGet, endpoint)
		return sendErr
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// CancelRequest aborts a request that has not finished processing.
func (c *Client) CancelRequest(ctx context.Context, requestID int64) error {
	path := fmt.Sprintf("logrequest/%d/cancel", requestID)
	return c.call(ctx, "cancel request", http.MethodPost, path, nil, nil)
}

// CleanRequest removes the prepared data of a processed request.
func (c *Client) CleanRequest(ctx context.Context, requestID int64) error {
	path := fmt.Sprintf("logrequest/%d/clean", requestID)
	return c.call(ctx, "clean request", http.MethodPost, path, nil, nil)
}
