package engine

import (
	"math/big"

	"github.com/google/uuid"
)

// The price-resolution protocol: each created order gets exactly one
// outstanding quote request, keyed by a fresh request id. The request and
// its callback are two independent atomic calls; anything may interleave
// between them, so ApplyQuote re-reads funder and collector state under the
// lock. There is no timeout or retry: an unanswered request leaves its
// order pending forever.

// requestQuote issues the quote request for a newly created order. Lock held.
func (e *Engine) requestQuote(o *Order) {
	req := QuoteRequest{
		RequestID:  uuid.NewString(),
		OrderID:    o.ID,
		PriceQuery: e.collectors[o.Collector].PriceQuery,
		GasPrice:   e.gasPrice,
	}
	e.requests[req.RequestID] = o.ID

	e.emit(QuoteRequested{
		RequestID:  req.RequestID,
		OrderID:    req.OrderID,
		PriceQuery: req.PriceQuery,
		GasPrice:   req.GasPrice,
		At:         e.now(),
	})

	if e.requester != nil {
		e.requester.RequestQuote(req)
	}
}

// ApplyQuote delivers an oracle callback. The request id must have been
// issued by this engine (ErrUnknownRequest otherwise) and the order must
// still be pending: the second of any duplicate or replayed callback is
// rejected with ErrAlreadyResolved and has no state effect. Returns a copy
// of the resolved order.
func (e *Engine) ApplyQuote(requestID string, rate *big.Int) (Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	orderID, ok := e.requests[requestID]
	if !ok {
		return Order{}, ErrUnknownRequest
	}

	o := e.orders[orderID]
	if o.Resolved() {
		return Order{}, ErrAlreadyResolved
	}
	if rate == nil || rate.Sign() <= 0 {
		return Order{}, ErrInvalidQuote
	}

	e.finalize(o, rate)
	return o.snapshot(), nil
}

// SetOracleGasPrice updates the gas budget attached to subsequent quote
// requests. Owner or admin only; already-issued requests are unaffected.
func (e *Engine) SetOracleGasPrice(caller string, gasPrice uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOwnerOrAdmin(caller) {
		return ErrUnauthorized
	}
	e.gasPrice = gasPrice
	return nil
}

// OracleGasPrice returns the gas budget for new quote requests.
func (e *Engine) OracleGasPrice() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gasPrice
}
