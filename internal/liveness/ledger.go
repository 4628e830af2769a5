package liveness

// RecordOutcome is the result of recording a heartbeat in the ledger.
type RecordOutcome int

const (
	Recorded RecordOutcome = iota
	// AlreadyRecorded means a valid heartbeat for this authority was
	// already on record. A benign no-op, not a failure: duplicate
	// submission must stay economically free.
	AlreadyRecorded
)

// Ledger is the per-session liveness bitmap: one bit per authority index,
// set once the authority has a valid heartbeat this session. It is scoped
// to exactly one session index and replaced wholesale at rotation.
//
// The bitmap is a fixed-size bit array sized to the validators count, so
// recording and derivation stay linear and allocation-free.
type Ledger struct {
	sessionIndex    uint32
	validatorsCount uint32
	bits            []byte
	recorded        uint32
}

func NewLedger(sessionIndex, validatorsCount uint32) *Ledger {
	return &Ledger{
		sessionIndex:    sessionIndex,
		validatorsCount: validatorsCount,
		bits:            make([]byte, (validatorsCount+7)/8),
	}
}

// SessionIndex returns the session this ledger is scoped to.
func (l *Ledger) SessionIndex() uint32 {
	return l.sessionIndex
}

// ValidatorsCount returns the size of the authority set this ledger covers.
func (l *Ledger) ValidatorsCount() uint32 {
	return l.validatorsCount
}

// Record marks the authority index as having submitted a valid heartbeat.
// Idempotent: the second record of the same index reports AlreadyRecorded
// and changes nothing. The index must already be bounds-checked.
func (l *Ledger) Record(authorityIndex uint32) RecordOutcome {
	if l.Contains(authorityIndex) {
		return AlreadyRecorded
	}
	l.bits[authorityIndex/8] |= 1 << (authorityIndex % 8)
	l.recorded++
	return Recorded
}

// Contains reports whether the authority index has a heartbeat on record.
func (l *Ledger) Contains(authorityIndex uint32) bool {
	if authorityIndex >= l.validatorsCount {
		return false
	}
	return l.bits[authorityIndex/8]&(1<<(authorityIndex%8)) != 0
}

// Recorded returns how many distinct authority indices are on record.
func (l *Ledger) Recorded() uint32 {
	return l.recorded
}

// Bitfield returns a copy of the raw bitmap, for persistence.
func (l *Ledger) Bitfield() []byte {
	out := make([]byte, len(l.bits))
	copy(out, l.bits)
	return out
}

// Restore overwrites the bitmap from a persisted bitfield of the same
// session. Used to resume the current session after a restart.
func (l *Ledger) Restore(bitfield []byte) bool {
	if len(bitfield) != len(l.bits) {
		return false
	}
	copy(l.bits, bitfield)
	l.recorded = 0
	for idx := uint32(0); idx < l.validatorsCount; idx++ {
		if l.Contains(idx) {
			l.recorded++
		}
	}
	return true
}

// Snapshot returns the recorded authority indices in ascending order.
func (l *Ledger) Snapshot() []uint32 {
	out := make([]uint32, 0, l.recorded)
	for idx := uint32(0); idx < l.validatorsCount; idx++ {
		if l.Contains(idx) {
			out = append(out, idx)
		}
	}
	return out
}
