package authority

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eigerco/bilberry/internal/testutils"
)

func TestSetAssignsIndicesInSuppliedOrder(t *testing.T) {
	identities := testutils.RandomIdentities(t, 5)
	set := NewSet(identities)

	require.Equal(t, uint32(5), set.Len())
	for i, id := range identities {
		idx, ok := set.IndexOf(id)
		require.True(t, ok)
		require.Equal(t, uint32(i), idx)

		got, ok := set.IdentityOf(uint32(i))
		require.True(t, ok)
		require.Equal(t, id, got)
	}
}

func TestSetUnknownIdentity(t *testing.T) {
	set := NewSet(testutils.RandomIdentities(t, 3))

	_, ok := set.IndexOf(testutils.RandomED25519PublicKey(t))
	require.False(t, ok)
}

func TestSetIndexOutOfRange(t *testing.T) {
	set := NewSet(testutils.RandomIdentities(t, 3))

	_, ok := set.IdentityOf(3)
	require.False(t, ok)
}

func TestSetEmpty(t *testing.T) {
	set := NewSet(nil)
	require.Equal(t, uint32(0), set.Len())
	require.Empty(t, set.Identities())
}

func TestSetDuplicateIdentityKeepsFirstIndex(t *testing.T) {
	id := testutils.RandomED25519PublicKey(t)
	identities := testutils.RandomIdentities(t, 2)
	identities = append(identities, id, id)
	set := NewSet(identities)

	idx, ok := set.IndexOf(id)
	require.True(t, ok)
	require.Equal(t, uint32(2), idx)
	require.Equal(t, uint32(4), set.Len())
}
