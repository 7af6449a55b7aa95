// Package oracle is the in-process price-resolution collaborator: it takes
// quote requests issued by the engine, fetches the price named by each
// collector's descriptor, scales it to an integer rate and delivers the
// callback. Failed fetches are not retried; the order simply stays pending.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betexlabs/saft-engine/internal/engine"
)

// QuoteApplier is the callback half of the price-resolution protocol,
// satisfied by *engine.Engine.
type QuoteApplier interface {
	ApplyQuote(requestID string, rate *big.Int) (engine.Order, error)
}

// Client resolves quote requests against HTTP price feeds. It implements
// engine.QuoteRequester.
type Client struct {
	applier    QuoteApplier
	requests   chan engine.QuoteRequest
	httpClient *http.Client
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func New(applier QuoteApplier) *Client {
	return &Client{
		applier:  applier,
		requests: make(chan engine.QuoteRequest, 256),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RequestQuote enqueues a request for resolution. Called while the engine
// lock is held, so it never blocks: when the queue is full the request is
// dropped and the order stays pending.
func (c *Client) RequestQuote(req engine.QuoteRequest) {
	select {
	case c.requests <- req:
	default:
		slog.Warn("oracle queue full, order stays pending",
			slog.Uint64("order_id", req.OrderID))
	}
}

// Start launches the resolution worker.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.run(ctx)
}

// Stop halts the worker and waits for it to drain.
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.requests:
			c.resolve(ctx, req)
		}
	}
}

func (c *Client) resolve(ctx context.Context, req engine.QuoteRequest) {
	rate, err := c.fetchRate(ctx, req.PriceQuery)
	if err != nil {
		slog.Warn("quote fetch failed, order stays pending",
			slog.Uint64("order_id", req.OrderID),
			slog.String("query", req.PriceQuery),
			slog.Any("error", err))
		return
	}

	o, err := c.applier.ApplyQuote(req.RequestID, rate)
	if err != nil {
		slog.Warn("quote callback rejected",
			slog.Uint64("order_id", req.OrderID),
			slog.Any("error", err))
		return
	}
	slog.Info("order resolved",
		slog.Uint64("order_id", o.ID),
		slog.String("rate", rate.String()),
		slog.String("tokens", o.Tokens.String()))
}

// fetchRate resolves a price descriptor to an integer rate scaled by
// 10^RateExponent, truncating any finer precision.
func (c *Client) fetchRate(ctx context.Context, query string) (*big.Int, error) {
	url, path, err := parseQuery(query)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("price fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned %s", resp.Status)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed price feed body: %w", err)
	}

	raw, err := extract(doc, path)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return nil, fmt.Errorf("bad price %q: %w", raw, err)
	}

	rate := price.Shift(engine.RateExponent).BigInt()
	return rate, nil
}
