package engine

import "math/big"

// SubmitOrder records a contribution in an externally-reported (off-chain)
// currency on behalf of a funder. Owner or refiller only. Returns the new
// order id; the order is created pending and a price quote is requested for
// it immediately.
func (e *Engine) SubmitOrder(caller string, funderID uint64, collector int, amount *big.Int, externalTxRef string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOwner(caller) && !e.isRefiller(caller) {
		return 0, ErrUnauthorized
	}
	return e.createOrder(funderID, collector, amount, externalTxRef)
}

// createOrder appends a pending order, emits the creation event and issues
// its quote request. Lock held; both entry paths (refiller submission and
// the native funding window) funnel through here.
func (e *Engine) createOrder(funderID uint64, collector int, amount *big.Int, externalTxRef string) (uint64, error) {
	if collector < 0 || collector >= len(e.collectors) {
		return 0, ErrInvalidCollector
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrZeroAmount
	}

	o := &Order{
		ID:            uint64(len(e.orders)),
		FunderID:      funderID,
		Collector:     collector,
		AmountPaid:    new(big.Int).Set(amount),
		ExternalTxRef: externalTxRef,
		Status:        OrderStatusPending,
		CreatedAt:     e.now(),
	}
	e.orders = append(e.orders, o)

	e.emit(OrderCreated{
		OrderID:       o.ID,
		FunderID:      o.FunderID,
		Collector:     o.Collector,
		Amount:        new(big.Int).Set(o.AmountPaid),
		ExternalTxRef: o.ExternalTxRef,
		At:            o.CreatedAt,
	})

	e.requestQuote(o)
	return o.ID, nil
}

// GetOrder returns a copy of the order with the given id.
func (e *Engine) GetOrder(orderID uint64) (Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if orderID >= uint64(len(e.orders)) {
		return Order{}, ErrNotFound
	}
	return e.orders[orderID].snapshot(), nil
}

// OrdersCount returns the number of orders ever created.
func (e *Engine) OrdersCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.orders)
}

// finalize applies a validated quote to a pending order. Lock held; reached
// only through ApplyQuote. KYC status is re-checked here, at resolution
// time: a KYC-failed funder's order still records its quote and turns
// resolved, but forfeits the token credit.
func (e *Engine) finalize(o *Order, quote *big.Int) {
	c := e.collectors[o.Collector]
	tokens := tokensFor(o.AmountPaid, quote, c.Decimals)

	_, kycFailed := e.kycFailed[o.FunderID]
	if kycFailed {
		tokens = new(big.Int)
	} else {
		e.credit(o.FunderID, tokens)
	}

	o.Quote = new(big.Int).Set(quote)
	o.Tokens = tokens
	o.Status = OrderStatusResolved
	o.ResolvedAt = e.now()

	e.emit(OrderResolved{
		OrderID:   o.ID,
		FunderID:  o.FunderID,
		Quote:     new(big.Int).Set(o.Quote),
		Tokens:    new(big.Int).Set(o.Tokens),
		KycFailed: kycFailed,
		At:        o.ResolvedAt,
	})
}
