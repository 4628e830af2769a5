package offence

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eigerco/bilberry/internal/authority"
	"github.com/eigerco/bilberry/internal/testutils"
)

func TestDeriveOfflineComplement(t *testing.T) {
	const v = 16
	identities := testutils.RandomIdentities(t, v)
	set := authority.NewSet(identities)

	for trial := 0; trial < 20; trial++ {
		present := make(map[uint32]bool)
		for idx := uint32(0); idx < v; idx++ {
			if rand.Intn(2) == 0 {
				present[idx] = true
			}
		}

		report := DeriveOffline(3, set, func(idx uint32) bool { return present[idx] })
		require.Equal(t, uint32(3), report.SessionIndex)

		want := 0
		for idx := uint32(0); idx < v; idx++ {
			if !present[idx] {
				require.Contains(t, report.Offline, identities[idx])
				want++
			}
		}
		require.Len(t, report.Offline, want)
	}
}

func TestDeriveOfflineOrderedByIndex(t *testing.T) {
	identities := testutils.RandomIdentities(t, 4)
	set := authority.NewSet(identities)

	report := DeriveOffline(0, set, func(uint32) bool { return false })
	require.Equal(t, identities, report.Offline)
}

func TestDeriveOfflineSingleAuthority(t *testing.T) {
	set := authority.NewSet(testutils.RandomIdentities(t, 1))

	// Even a fully silent single-authority set produces no report.
	report := DeriveOffline(1, set, func(uint32) bool { return false })
	require.Empty(t, report.Offline)
}

func TestDeriveOfflineEmptySet(t *testing.T) {
	report := DeriveOffline(1, authority.NewSet(nil), func(uint32) bool { return false })
	require.Empty(t, report.Offline)

	report = DeriveOffline(1, nil, func(uint32) bool { return false })
	require.Empty(t, report.Offline)
}

func TestDeriveOfflineAllSubmitted(t *testing.T) {
	set := authority.NewSet(testutils.RandomIdentities(t, 6))
	report := DeriveOffline(2, set, func(uint32) bool { return true })
	require.Empty(t, report.Offline)
}
