// Package oai implements the client side of the OAI-PMH ListRecords
// protocol: page fetching with busy-wait and bounded transport retries, and
// mapping of protocol-native records into domain records.
package oai

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/papertrawl/internal/domain"
	"github.com/timmy/papertrawl/internal/logger"
)

const (
	// DefaultBaseURL is the remote list-protocol endpoint.
	DefaultBaseURL = "https://export.arxiv.org/oai2"

	// DefaultMetadataPrefix selects the source-native metadata format,
	// which carries the richest field set.
	DefaultMetadataPrefix = "arXiv"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 120 * time.Second

	// DefaultBusyWait is the fallback wait when a server-busy response
	// carries no Retry-After hint.
	DefaultBusyWait = 30 * time.Second

	// maxTransportAttempts bounds retries of transport-level failures.
	// The backoff schedule is linear: 30s after the first failure, 60s
	// after the second, surfacing ErrTransient after the third.
	maxTransportAttempts = 3
	backoffStep          = 30 * time.Second

	// maxBodyExcerpt truncates error bodies carried in RequestError.
	maxBodyExcerpt = 500
)

// Config holds configuration for the protocol client.
type Config struct {
	BaseURL        string
	MetadataPrefix string
	Timeout        time.Duration
	BusyWait       time.Duration
}

// Client issues single page requests against the remote list protocol.
// It does not pace successive pages; inter-request spacing is the pager's
// job. The only sleeping done here is the busy-retry and backoff waits.
type Client struct {
	http           *resty.Client
	baseURL        string
	metadataPrefix string
	busyWait       time.Duration

	// sleep is injectable so tests can observe waits without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new protocol client.
// Parameters:
//   - cfg: client configuration; nil or zero fields fall back to defaults.
//
// Returns:
//   - *Client: initialized client.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	prefix := cfg.MetadataPrefix
	if prefix == "" {
		prefix = DefaultMetadataPrefix
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	busyWait := cfg.BusyWait
	if busyWait <= 0 {
		busyWait = DefaultBusyWait
	}

	httpClient := resty.New()
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("Accept", "text/xml")

	return &Client{
		http:           httpClient,
		baseURL:        baseURL,
		metadataPrefix: prefix,
		busyWait:       busyWait,
		sleep:          sleepContext,
	}
}

// FetchPage issues one ListRecords request and returns the page's records
// and the continuation token ("" when the scope is exhausted).
//
// Supplying a token continues an existing chain; otherwise the call opens a
// new scope (global or single date). Server-busy responses are retried after
// the server-suggested wait without counting as failed attempts. Transport
// failures are retried up to maxTransportAttempts with linear backoff and
// then surface ErrTransient. Unexpected statuses and protocol error
// envelopes surface RequestError and ProtocolError respectively.
func (c *Client) FetchPage(ctx context.Context, scope Scope, token string) ([]domain.Record, string, error) {
	attempts := 0
	for {
		resp, err := c.request(ctx, scope, token)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			attempts++
			if attempts >= maxTransportAttempts {
				return nil, "", fmt.Errorf("%w: %d attempts, last: %v", ErrTransient, attempts, err)
			}
			wait := time.Duration(attempts) * backoffStep
			logger.FromContext(ctx).WithFields(logger.Fields{
				"attempt": attempts,
				"wait":    wait.String(),
			}).WithError(err).Warn("Transport failure, retrying")
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, "", serr
			}
			continue
		}

		if resp.StatusCode() == http.StatusServiceUnavailable {
			wait := retryAfter(resp.Header().Get("Retry-After"), c.busyWait)
			logger.FromContext(ctx).WithField("wait", wait.String()).Warn("Server busy, waiting")
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, "", serr
			}
			// Busy retries repeat the same request and are not counted
			// against the transport attempt bound.
			continue
		}

		if resp.StatusCode() != http.StatusOK {
			return nil, "", &RequestError{
				StatusCode: resp.StatusCode(),
				Body:       truncate(string(resp.Body()), maxBodyExcerpt),
			}
		}

		return decodePage(scope, resp.Body())
	}
}

func (c *Client) request(ctx context.Context, scope Scope, token string) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx).SetQueryParam("verb", "ListRecords")
	if token != "" {
		// A resumption token is exclusive with all other request arguments.
		req.SetQueryParam("resumptionToken", token)
	} else {
		req.SetQueryParam("metadataPrefix", c.metadataPrefix)
		if scope.IsDate() {
			req.SetQueryParam("from", string(scope))
			req.SetQueryParam("until", string(scope))
		}
	}
	return req.Get(c.baseURL)
}

// decodePage parses a ListRecords envelope into records and the next token.
func decodePage(scope Scope, body []byte) ([]domain.Record, string, error) {
	var env envelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, "", &ProtocolError{Code: "malformedResponse", Message: err.Error()}
	}

	if env.Error != nil {
		if env.Error.Code == "noRecordsMatch" && scope.IsDate() {
			// A date with no submissions is a valid empty partition.
			return nil, "", nil
		}
		return nil, "", &ProtocolError{
			Code:    env.Error.Code,
			Message: strings.TrimSpace(env.Error.Message),
		}
	}

	if env.ListRecords == nil {
		return nil, "", &ProtocolError{Code: "missingListRecords", Message: "response carries neither records nor an error"}
	}

	records := make([]domain.Record, 0, len(env.ListRecords.Records))
	for _, rec := range env.ListRecords.Records {
		if r, ok := parseRecord(rec); ok {
			records = append(records, r)
		}
	}

	return records, strings.TrimSpace(env.ListRecords.ResumptionToken), nil
}

// retryAfter parses a Retry-After seconds value, falling back when absent
// or unparseable.
func retryAfter(header string, fallback time.Duration) time.Duration {
	if header == "" {
		return fallback
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// sleepContext blocks for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
