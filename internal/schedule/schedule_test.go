package schedule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeartbeatDueOncePerPeriod(t *testing.T) {
	const period = 10
	for idx := uint32(0); idx < 4; idx++ {
		due := 0
		for block := uint64(100); block < 100+period; block++ {
			if IsHeartbeatDue(block, idx, period, true) {
				due++
			}
		}
		require.Equal(t, 1, due, "authority %d should be due exactly once per period", idx)
	}
}

func TestHeartbeatSpreading(t *testing.T) {
	// Due blocks of as many authorities as there are blocks in a period
	// must cover every offset exactly once.
	for _, period := range []uint64{2, 5, 7} {
		seen := make(map[uint64]uint32)
		for idx := uint32(0); uint64(idx) < period; idx++ {
			offset := DueOffset(idx, period)
			require.True(t, IsHeartbeatDue(offset, idx, period, true))
			_, taken := seen[offset]
			require.False(t, taken, "period %d: offset %d assigned twice", period, offset)
			seen[offset] = idx
		}
		require.Len(t, seen, int(period))
	}
}

func TestHeartbeatNeverDueWhenDisabled(t *testing.T) {
	for block := uint64(0); block < 50; block++ {
		require.False(t, IsHeartbeatDue(block, 0, 10, false))
	}
}

func TestHeartbeatNeverDueWithZeroPeriod(t *testing.T) {
	for block := uint64(0); block < 50; block++ {
		require.False(t, IsHeartbeatDue(block, 3, 0, true))
	}
}

func TestSessionDeadlineReached(t *testing.T) {
	require.False(t, SessionDeadlineReached(99, 100))
	require.True(t, SessionDeadlineReached(100, 100))
	require.True(t, SessionDeadlineReached(101, 100))
}
