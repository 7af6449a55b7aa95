package engine

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ether(t *testing.T, milli int64) *big.Int {
	t.Helper()
	return new(big.Int).Mul(big.NewInt(milli), pow10(15))
}

func TestReceivePaymentOutsideWindow(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.AddDirect(testOwner, testFunder, 1235))

	for _, at := range []time.Time{
		saleStart.Add(-time.Second),
		saleEnd.Add(time.Second),
	} {
		e.now = func() time.Time { return at }
		_, err := e.ReceivePayment(testFunder, ether(t, 1000))
		require.ErrorIs(t, err, ErrWindowClosed)
	}
	require.Zero(t, e.OrdersCount())
}

func TestReceivePaymentWindowInclusive(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.AddDirect(testOwner, testFunder, 1235))

	for _, at := range []time.Time{saleStart, saleEnd} {
		e.now = func() time.Time { return at }
		_, err := e.ReceivePayment(testFunder, ether(t, 1000))
		require.NoError(t, err)
	}
}

func TestReceivePaymentUnauthorizedFunder(t *testing.T) {
	e, _, _ := newTestEngine(t)

	// no amount authorizes an unmapped sender
	_, err := e.ReceivePayment(testStranger, ether(t, 1000))
	require.ErrorIs(t, err, ErrUnauthorizedFunder)
	_, err = e.ReceivePayment(testStranger, ether(t, 100000))
	require.ErrorIs(t, err, ErrUnauthorizedFunder)
	require.Zero(t, e.OrdersCount())
}

func TestReceivePaymentBelowMinimum(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.AddDirect(testOwner, testFunder, 1234))

	_, err := e.ReceivePayment(testFunder, ether(t, 498))
	require.ErrorIs(t, err, ErrBelowMinimum)
	_, err = e.ReceivePayment(testFunder, nil)
	require.ErrorIs(t, err, ErrBelowMinimum)
	require.Zero(t, e.OrdersCount())
}

func TestReceivePaymentAtMinimum(t *testing.T) {
	e, _, log := newTestEngine(t)
	require.NoError(t, e.AddDirect(testOwner, testFunder, 1235))

	orderID, err := e.ReceivePayment(testFunder, ether(t, 500))
	require.NoError(t, err)

	o, err := e.GetOrder(orderID)
	require.NoError(t, err)
	require.Equal(t, uint64(1235), o.FunderID)
	require.Equal(t, nativeCollector, o.Collector)
	require.Zero(t, o.AmountPaid.Cmp(ether(t, 500)))
	require.Equal(t, OrderStatusPending, o.Status)
	require.Empty(t, o.ExternalTxRef)

	transfers := log.ofKind("custody_transfer")
	require.Len(t, transfers, 1)
	ct := transfers[0].(CustodyTransfer)
	require.Equal(t, orderID, ct.OrderID)
	require.Equal(t, testWallet, ct.Wallet)
	require.Zero(t, ct.Amount.Cmp(ether(t, 500)))
}

func TestReceivePaymentResolvesLikeAnyOrder(t *testing.T) {
	e, reqs, _ := newTestEngine(t)
	require.NoError(t, e.AddDirect(testOwner, testFunder, 1235))

	funds := ether(t, 1000) // 1 native unit
	_, err := e.ReceivePayment(testFunder, funds)
	require.NoError(t, err)

	_, err = e.ApplyQuote(reqs.last(t).RequestID, big.NewInt(30000))
	require.NoError(t, err)

	// 1e18 * 30000 / 10^4 / 3 = 1e18
	require.Zero(t, e.Purchased(1235).Cmp(pow10(18)))
}
