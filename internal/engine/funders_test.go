package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddDirect(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.NoError(t, e.AddDirect(testOwner, testFunder, 123456))

	id, err := e.DirectFunder(testFunder)
	require.NoError(t, err)
	require.Equal(t, uint64(123456), id)

	_, err = e.DirectFunder(testStranger)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddDirectConflicts(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.NoError(t, e.AddDirect(testAdmin, testFunder, 1))

	// same binding again is a no-op
	require.NoError(t, e.AddDirect(testAdmin, testFunder, 1))

	// address already serves funder 1
	require.ErrorIs(t, e.AddDirect(testAdmin, testFunder, 2), ErrAlreadyMapped)

	// funder 1 already bound to another address
	require.ErrorIs(t, e.AddDirect(testAdmin, "0xother", 1), ErrAlreadyMapped)
}

func TestAddDirectPrivileged(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.ErrorIs(t, e.AddDirect(testRefiller, testFunder, 1), ErrUnauthorized)
	require.ErrorIs(t, e.AddDirect(testStranger, testFunder, 1), ErrUnauthorized)
}

func TestFailedKycIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.Zero(t, e.FailedKycCount())
	require.False(t, e.IsKycFailed(77))

	require.NoError(t, e.FailedKyc(testOwner, 77))
	require.True(t, e.IsKycFailed(77))
	require.Equal(t, uint64(1), e.FailedKycCount())

	// repeated marks never double-count
	require.NoError(t, e.FailedKyc(testAdmin, 77))
	require.NoError(t, e.FailedKyc(testOwner, 77))
	require.Equal(t, uint64(1), e.FailedKycCount())

	require.NoError(t, e.FailedKyc(testOwner, 78))
	require.Equal(t, uint64(2), e.FailedKycCount())
}

func TestFailedKycPrivileged(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.ErrorIs(t, e.FailedKyc(testStranger, 77), ErrUnauthorized)
	require.False(t, e.IsKycFailed(77))
	require.Zero(t, e.FailedKycCount())
}

func TestPurchasedDefaultsToZero(t *testing.T) {
	e, _, _ := newTestEngine(t)

	total := e.Purchased(999)
	require.Zero(t, total.Sign())

	// mutating the returned value must not touch engine state
	total.SetInt64(42)
	require.Zero(t, e.Purchased(999).Sign())
}
