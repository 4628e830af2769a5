// Package schedule computes when an authority is expected to emit a
// heartbeat. All functions are pure; the surrounding node supplies the
// chain height and configuration.
package schedule

// IsHeartbeatDue reports whether the authority at the given index should
// emit a heartbeat at this block. Each authority's due block is offset by
// its index within the period so submissions spread across the period
// instead of landing in the same block. A zero period or a disabled
// scheduler means a heartbeat is never due.
func IsHeartbeatDue(block uint64, authorityIndex uint32, periodLength uint64, enabled bool) bool {
	if !enabled || periodLength == 0 {
		return false
	}
	return (block+uint64(authorityIndex))%periodLength == 0
}

// DueOffset returns the offset within a period at which the authority's
// heartbeat falls due.
func DueOffset(authorityIndex uint32, periodLength uint64) uint64 {
	if periodLength == 0 {
		return 0
	}
	return (periodLength - uint64(authorityIndex)%periodLength) % periodLength
}

// SessionDeadlineReached reports whether the session's end block has been
// reached, which triggers offline derivation.
func SessionDeadlineReached(block, sessionEndBlock uint64) bool {
	return block >= sessionEndBlock
}
