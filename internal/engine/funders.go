package engine

import "math/big"

// AddDirect binds an on-chain sender address to an external funder id,
// authorizing native-currency contributions from that address. Owner or
// admin only. A funder holds at most one address and an address serves at
// most one funder; re-adding an identical binding is a no-op.
func (e *Engine) AddDirect(caller, addr string, funderID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOwnerOrAdmin(caller) {
		return ErrUnauthorized
	}
	if mapped, ok := e.direct[addr]; ok && mapped != funderID {
		return ErrAlreadyMapped
	}
	if bound, ok := e.funderAddr[funderID]; ok && bound != addr {
		return ErrAlreadyMapped
	}

	e.direct[addr] = funderID
	e.funderAddr[funderID] = addr
	return nil
}

// DirectFunder returns the funder id mapped to a sender address.
func (e *Engine) DirectFunder(addr string) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, ok := e.direct[addr]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

// FailedKyc marks a funder id permanently compliance-blocked. Owner or
// admin only. Idempotent: the failed count increases exactly once per
// distinct id. Pending orders of the funder still resolve, but with zero
// token credit; funds already received are never reversed.
func (e *Engine) FailedKyc(caller string, funderID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isOwnerOrAdmin(caller) {
		return ErrUnauthorized
	}
	if _, ok := e.kycFailed[funderID]; ok {
		return nil
	}
	e.kycFailed[funderID] = struct{}{}
	e.failedKycCount++
	return nil
}

// IsKycFailed reports whether funderID is barred from token issuance.
func (e *Engine) IsKycFailed(funderID uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.kycFailed[funderID]
	return ok
}

// FailedKycCount returns the number of distinct KYC-failed funder ids.
func (e *Engine) FailedKycCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failedKycCount
}

// Purchased returns the cumulative token amount credited to funderID over
// its resolved orders.
func (e *Engine) Purchased(funderID uint64) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()

	total, ok := e.purchased[funderID]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(total)
}

// credit adds tokens to the funder's purchased total. Lock held.
func (e *Engine) credit(funderID uint64, tokens *big.Int) {
	total, ok := e.purchased[funderID]
	if !ok {
		total = new(big.Int)
		e.purchased[funderID] = total
	}
	total.Add(total, tokens)
}
