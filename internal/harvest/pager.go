// Package harvest drives the paginated list protocol to completion across
// process restarts and fixed-duration execution windows.
package harvest

import (
	"context"
	"time"

	"github.com/timmy/papertrawl/internal/domain"
	"github.com/timmy/papertrawl/internal/oai"
	"golang.org/x/time/rate"
)

// Fetcher is the page-level protocol contract implemented by oai.Client.
type Fetcher interface {
	FetchPage(ctx context.Context, scope oai.Scope, token string) ([]domain.Record, string, error)
}

// Pager follows continuation-token chains page by page, pacing successive
// requests. The spacing is a hard contract of the remote service, not a
// tuning knob: violating it risks the source banning the client.
//
// Pagination is strictly sequential. Tokens impose a total order on pages,
// so there is nothing to gain and correctness to lose from fetching pages
// of one scope concurrently.
type Pager struct {
	client  Fetcher
	limiter *rate.Limiter
}

// NewPager creates a Pager with the given inter-request delay.
func NewPager(client Fetcher, delay time.Duration) *Pager {
	if delay <= 0 {
		delay = 3 * time.Second
	}
	// Burst 1 lets the first request of a run go out immediately; every
	// subsequent request waits out the full delay.
	return &Pager{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// FetchScope accumulates every record of one scope, following the token
// chain until the server stops issuing tokens. Transient errors from the
// client are not retried here; they propagate so the harvest loop can
// checkpoint and defer the scope to the next invocation.
func (p *Pager) FetchScope(ctx context.Context, scope oai.Scope) ([]domain.Record, error) {
	var all []domain.Record
	token := ""
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		records, next, err := p.client.FetchPage(ctx, scope, token)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if next == "" {
			return all, nil
		}
		token = next
	}
}

// FetchAll accumulates the entire corpus on a single token chain.
func (p *Pager) FetchAll(ctx context.Context) ([]domain.Record, error) {
	return p.FetchScope(ctx, oai.ScopeAll)
}

// FetchNext fetches a single page of the global chain, pacing included.
// The harvest loop uses this step form so it can checkpoint between pages.
func (p *Pager) FetchNext(ctx context.Context, token string) ([]domain.Record, string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}
	return p.client.FetchPage(ctx, oai.ScopeAll, token)
}
