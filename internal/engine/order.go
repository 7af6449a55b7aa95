package engine

import (
	"math/big"
	"time"
)

// Sale-wide pricing constants. Quotes arrive as integer rates scaled by
// 10^RateExponent; each token costs TokenPrice quote-currency units.
const (
	RateExponent = 4
	TokenPrice   = 3

	// nativeDecimals is the smallest-unit exponent of the native currency.
	// Every collector amount is normalized to this precision before pricing.
	nativeDecimals = 18
)

// OrderStatus tracks the order lifecycle. Resolved is terminal.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusResolved OrderStatus = "resolved"
)

// Order is one funding contribution awaiting or having received its
// price-based token valuation. AmountPaid is in raw units of the order's
// collector currency and is fixed at creation. Quote and Tokens stay nil
// while the order is pending.
type Order struct {
	ID            uint64
	FunderID      uint64
	Collector     int
	AmountPaid    *big.Int
	Quote         *big.Int
	Tokens        *big.Int
	ExternalTxRef string
	Status        OrderStatus
	CreatedAt     time.Time
	ResolvedAt    time.Time
}

// Resolved reports whether the order reached its terminal state.
func (o *Order) Resolved() bool {
	return o.Status == OrderStatusResolved
}

// snapshot returns a deep copy so callers cannot mutate engine state
// through shared big.Int pointers.
func (o *Order) snapshot() Order {
	out := *o
	if o.AmountPaid != nil {
		out.AmountPaid = new(big.Int).Set(o.AmountPaid)
	}
	if o.Quote != nil {
		out.Quote = new(big.Int).Set(o.Quote)
	}
	if o.Tokens != nil {
		out.Tokens = new(big.Int).Set(o.Tokens)
	}
	return out
}

// tokensFor converts a paid amount into a token allocation:
//
//	tokens = amount * quote * 10^(18-decimals) / 10^RateExponent / TokenPrice
//
// using integer arithmetic with truncation toward zero at each division.
func tokensFor(amount, quote *big.Int, decimals uint8) *big.Int {
	t := new(big.Int).Mul(amount, quote)
	t.Mul(t, pow10(nativeDecimals-int(decimals)))
	t.Quo(t, pow10(RateExponent))
	return t.Quo(t, big.NewInt(TokenPrice))
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
