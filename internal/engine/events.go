package engine

import (
	"math/big"
	"time"
)

// Event is a state-change notification emitted by the engine for off-chain
// monitoring (the archive recorder, metrics). Events are emitted while the
// engine lock is held: a NotifyFunc must hand the event off (enqueue, copy)
// and must never call back into the engine.
type Event interface {
	Kind() string
}

// NotifyFunc receives engine events. A nil NotifyFunc disables notification.
type NotifyFunc func(Event)

// OrderCreated signals a new pending order.
type OrderCreated struct {
	OrderID       uint64
	FunderID      uint64
	Collector     int
	Amount        *big.Int
	ExternalTxRef string
	At            time.Time
}

func (OrderCreated) Kind() string { return "order_created" }

// OrderResolved signals that an order received its quote and was finalized.
// Tokens is zero when the funder was KYC-failed at resolution time.
type OrderResolved struct {
	OrderID   uint64
	FunderID  uint64
	Quote     *big.Int
	Tokens    *big.Int
	KycFailed bool
	At        time.Time
}

func (OrderResolved) Kind() string { return "order_resolved" }

// QuoteRequested signals that a price quote was requested for an order.
type QuoteRequested struct {
	RequestID  string
	OrderID    uint64
	PriceQuery string
	GasPrice   uint64
	At         time.Time
}

func (QuoteRequested) Kind() string { return "quote_requested" }

// CustodyTransfer signals that a native contribution was forwarded to the
// custody wallet.
type CustodyTransfer struct {
	OrderID uint64
	Wallet  string
	Amount  *big.Int
	At      time.Time
}

func (CustodyTransfer) Kind() string { return "custody_transfer" }

func (e *Engine) emit(ev Event) {
	if e.notify != nil {
		e.notify(ev)
	}
}
