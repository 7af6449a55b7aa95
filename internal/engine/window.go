package engine

import "math/big"

// ReceivePayment handles an inbound native-currency transfer. The sale
// window must be open ([startTime, endTime] inclusive), the sender must
// hold a direct funding mapping, and the amount must meet the minimum
// contribution. On success the full amount is forwarded to the custody
// wallet and a pending order is created against collector index 0.
func (e *Engine) ReceivePayment(sender string, amount *big.Int) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if now.Before(e.startTime) || now.After(e.endTime) {
		return 0, ErrWindowClosed
	}

	funderID, ok := e.direct[sender]
	if !ok {
		return 0, ErrUnauthorizedFunder
	}
	if amount == nil || amount.Cmp(e.minContribution) < 0 {
		return 0, ErrBelowMinimum
	}

	orderID, err := e.createOrder(funderID, nativeCollector, amount, "")
	if err != nil {
		return 0, err
	}

	// Custody transfers the raw funds independent of resolution; an order
	// that never resolves keeps the money with the wallet.
	e.emit(CustodyTransfer{
		OrderID: orderID,
		Wallet:  e.wallet,
		Amount:  new(big.Int).Set(amount),
		At:      now,
	})
	return orderID, nil
}

// nativeCollector is the reserved registry index of the native currency.
const nativeCollector = 0
