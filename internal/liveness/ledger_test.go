package liveness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerRecordIdempotent(t *testing.T) {
	l := NewLedger(1, 4)

	require.Equal(t, Recorded, l.Record(2))
	require.Equal(t, AlreadyRecorded, l.Record(2))
	require.Equal(t, uint32(1), l.Recorded())
	require.Equal(t, []uint32{2}, l.Snapshot())
}

func TestLedgerContains(t *testing.T) {
	l := NewLedger(0, 10)
	require.False(t, l.Contains(0))

	l.Record(0)
	l.Record(9)
	require.True(t, l.Contains(0))
	require.True(t, l.Contains(9))
	require.False(t, l.Contains(5))
	require.False(t, l.Contains(10))
	require.False(t, l.Contains(64))
}

func TestLedgerSnapshotOrdered(t *testing.T) {
	l := NewLedger(0, 16)
	for _, idx := range []uint32{9, 0, 15, 3} {
		require.Equal(t, Recorded, l.Record(idx))
	}
	require.Equal(t, []uint32{0, 3, 9, 15}, l.Snapshot())
}

func TestLedgerEmpty(t *testing.T) {
	l := NewLedger(5, 0)
	require.Equal(t, uint32(0), l.Recorded())
	require.Empty(t, l.Snapshot())
	require.Empty(t, l.Bitfield())
}

func TestLedgerRestore(t *testing.T) {
	l := NewLedger(2, 12)
	l.Record(1)
	l.Record(11)
	saved := l.Bitfield()

	restored := NewLedger(2, 12)
	require.True(t, restored.Restore(saved))
	require.Equal(t, uint32(2), restored.Recorded())
	require.Equal(t, []uint32{1, 11}, restored.Snapshot())

	// A bitfield sized for a different set must be refused.
	wrong := NewLedger(2, 64)
	require.False(t, wrong.Restore(saved))
}
