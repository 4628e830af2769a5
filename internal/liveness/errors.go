package liveness

import "errors"

var (
	// ErrNotActive means no session is active, either because none has
	// started yet or because the previous session is mid-derivation.
	ErrNotActive = errors.New("no active session")
	// ErrStaleSession rejects heartbeats for an already-ended session.
	ErrStaleSession = errors.New("heartbeat for a past session")
	// ErrFutureSession rejects heartbeats for a session not yet started.
	ErrFutureSession = errors.New("heartbeat for a future session")
	// ErrWrongNetwork rejects heartbeats signed for another chain.
	ErrWrongNetwork = errors.New("heartbeat for a different network")
	// ErrIndexOutOfBounds rejects authority indices outside the set.
	ErrIndexOutOfBounds = errors.New("authority index out of bounds")
	// ErrBadSignature rejects heartbeats whose signature does not verify
	// against the session key at the claimed index.
	ErrBadSignature = errors.New("bad heartbeat signature")
	// ErrSessionMismatch means a rotation hook was called with a session
	// index that does not match the engine's state.
	ErrSessionMismatch = errors.New("rotation hook session mismatch")
	// ErrAlreadyActive means OnSessionStart was called twice without an
	// intervening OnSessionEnd.
	ErrAlreadyActive = errors.New("session already active")
	// ErrSessionNotRetained means a historical query addressed a session
	// that was never archived or has been pruned.
	ErrSessionNotRetained = errors.New("session not retained")
)
