package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRolePredicates(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.True(t, e.IsOwner(testOwner))
	require.False(t, e.IsOwner(testAdmin))
	require.False(t, e.IsOwner(""))

	require.True(t, e.IsAdmin(testAdmin))
	require.False(t, e.IsAdmin(testOwner))

	require.True(t, e.IsRefiller(testRefiller))
	require.False(t, e.IsRefiller(testStranger))
}

func TestAddRefillerIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.NoError(t, e.AddRefiller(testOwner, "0xextra"))
	require.NoError(t, e.AddRefiller(testAdmin, "0xextra"))
	require.True(t, e.IsRefiller("0xextra"))
}

func TestRemoveRefiller(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.NoError(t, e.RemoveRefiller(testAdmin, testRefiller))
	require.False(t, e.IsRefiller(testRefiller))

	// removing a non-member is a no-op
	require.NoError(t, e.RemoveRefiller(testOwner, testRefiller))
}

func TestRefillerMutationPrivileged(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.ErrorIs(t, e.AddRefiller(testStranger, "0xextra"), ErrUnauthorized)
	require.ErrorIs(t, e.AddRefiller(testRefiller, "0xextra"), ErrUnauthorized)
	require.ErrorIs(t, e.RemoveRefiller(testStranger, testRefiller), ErrUnauthorized)
	require.True(t, e.IsRefiller(testRefiller))
}
