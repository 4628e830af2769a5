// Package liveness keeps the per-session record of which authorities have
// proven liveness and drives the session rotation state machine.
package liveness

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eigerco/bilberry/internal/authority"
	"github.com/eigerco/bilberry/internal/crypto"
	"github.com/eigerco/bilberry/internal/crypto/ed25519"
	"github.com/eigerco/bilberry/internal/heartbeat"
	"github.com/eigerco/bilberry/internal/offence"
	"github.com/eigerco/bilberry/internal/store"
	"github.com/eigerco/bilberry/internal/telemetry"
)

// phase is the session state machine: idle → active(s) → deriving(s) →
// active(s+1) → ... No heartbeat is recorded outside the active phase.
type phase int

const (
	phaseIdle phase = iota
	phaseActive
	phaseDeriving
)

// Config is the externally supplied, read-only heartbeat configuration.
type Config struct {
	// PeriodLength is the heartbeat period in blocks.
	PeriodLength uint64
	// Enabled turns the whole mechanism off when false.
	Enabled bool
	// NetworkID pins accepted heartbeats to this chain.
	NetworkID crypto.NetworkID
}

// AuthorityLiveness is one row of the current-session liveness query.
type AuthorityLiveness struct {
	AuthorityIndex uint32
	Identity       ed25519.PublicKey
	Submitted      bool
}

// Engine owns the authority set and liveness ledger of the active session.
// Submissions arrive from concurrent gateway streams while the session
// scheduler rotates from its own goroutine, so the engine serializes entry
// itself: every exported method holds mu for its full duration.
type Engine struct {
	cfg      Config
	verifier heartbeat.Verifier
	reporter offence.Reporter
	archive  *store.Liveness // optional; nil disables persistence
	log      zerolog.Logger

	mu      sync.Mutex
	phase   phase
	session uint32
	set     *authority.Set
	ledger  *Ledger
}

// NewEngine wires the engine to its collaborators. The archive may be nil,
// in which case historical queries and crash resumption are unavailable.
func NewEngine(cfg Config, verifier heartbeat.Verifier, reporter offence.Reporter, archive *store.Liveness, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		verifier: verifier,
		reporter: reporter,
		archive:  archive,
		log:      logger,
	}
}

// OnSessionStart installs the new authority set and an empty ledger scoped
// to the new session. Called exactly once per session by the session
// scheduler, strictly after the previous session's OnSessionEnd.
func (e *Engine) OnSessionStart(sessionIndex uint32, identities []ed25519.PublicKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startSession(sessionIndex, identities)
}

func (e *Engine) startSession(sessionIndex uint32, identities []ed25519.PublicKey) error {
	if e.phase == phaseActive {
		return ErrAlreadyActive
	}
	e.session = sessionIndex
	e.set = authority.NewSet(identities)
	e.ledger = NewLedger(sessionIndex, e.set.Len())
	e.phase = phaseActive

	e.resumeFromArchive()
	e.persistCurrent()

	e.log.Info().
		Uint32("session", sessionIndex).
		Uint32("validators", e.set.Len()).
		Msg("session started")
	return nil
}

// OnSessionEnd derives the offline set of the ending session, archives the
// session and hands the report to the offence sink. The returned report is
// always well formed; a reporter failure is returned alongside it, wrapped
// in offence.ErrReporterUnavailable, and does not block the next
// OnSessionStart.
func (e *Engine) OnSessionEnd(sessionIndex uint32) (*offence.OfflineReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endSession(sessionIndex)
}

func (e *Engine) endSession(sessionIndex uint32) (*offence.OfflineReport, error) {
	if e.phase != phaseActive {
		return nil, ErrNotActive
	}
	if sessionIndex != e.session {
		return nil, fmt.Errorf("%w: ending %d, active %d", ErrSessionMismatch, sessionIndex, e.session)
	}
	e.phase = phaseDeriving

	report := offence.DeriveOffline(sessionIndex, e.set, e.ledger.Contains)
	e.archiveSession(report)
	telemetry.SessionsRotated.Inc()

	if len(report.Offline) == 0 {
		return report, nil
	}
	if err := e.reporter.ReportOffline(report); err != nil {
		telemetry.ReporterFailures.Inc()
		e.log.Warn().Err(err).
			Uint32("session", sessionIndex).
			Int("offline", len(report.Offline)).
			Msg("offline report not delivered")
		return report, fmt.Errorf("%w: %w", offence.ErrReporterUnavailable, err)
	}
	telemetry.AuthoritiesReportedOffline.Add(float64(len(report.Offline)))
	e.log.Info().
		Uint32("session", sessionIndex).
		Int("offline", len(report.Offline)).
		Msg("offline report delivered")
	return report, nil
}

// Rotate folds OnSessionEnd and OnSessionStart into the single logical
// transition, for hosts with a one-shot rotation hook. A reporter failure
// is returned after the new session has been started.
func (e *Engine) Rotate(oldSession, newSession uint32, identities []ed25519.PublicKey) (*offence.OfflineReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report, reportErr := e.endSession(oldSession)
	if report == nil {
		return nil, reportErr
	}
	if err := e.startSession(newSession, identities); err != nil {
		return report, err
	}
	return report, reportErr
}

// SubmitHeartbeat is the inbound submission interface: it decodes,
// validates and records a raw heartbeat. Validation failures leave the
// ledger untouched.
func (e *Engine) SubmitHeartbeat(raw []byte) (RecordOutcome, error) {
	hb, err := heartbeat.FromBytes(raw)
	if err != nil {
		telemetry.HeartbeatsRejected.WithLabelValues("malformed").Inc()
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.validate(hb); err != nil {
		telemetry.HeartbeatsRejected.WithLabelValues(rejectReason(err)).Inc()
		e.log.Debug().Err(err).
			Uint32("session", hb.SessionIndex).
			Uint32("authority", hb.AuthorityIndex).
			Msg("heartbeat rejected")
		return 0, err
	}

	outcome := e.ledger.Record(hb.AuthorityIndex)
	if outcome == AlreadyRecorded {
		telemetry.HeartbeatsDuplicate.Inc()
		return outcome, nil
	}
	telemetry.HeartbeatsAccepted.Inc()
	e.persistCurrent()
	e.log.Debug().
		Uint32("session", hb.SessionIndex).
		Uint32("authority", hb.AuthorityIndex).
		Uint64("block", hb.BlockNumber).
		Msg("heartbeat recorded")
	return outcome, nil
}

// Validate applies the authenticity and freshness checks without touching
// the ledger, so the submission pipeline can reject cheaply.
func (e *Engine) Validate(hb *heartbeat.Heartbeat) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validate(hb)
}

func (e *Engine) validate(hb *heartbeat.Heartbeat) error {
	if e.phase != phaseActive {
		return ErrNotActive
	}
	if !bytes.Equal(hb.NetworkID[:], e.cfg.NetworkID[:]) {
		return ErrWrongNetwork
	}
	if hb.SessionIndex < e.session {
		return ErrStaleSession
	}
	if hb.SessionIndex > e.session {
		return ErrFutureSession
	}
	if hb.AuthorityIndex >= e.set.Len() {
		return ErrIndexOutOfBounds
	}
	identity, ok := e.set.IdentityOf(hb.AuthorityIndex)
	if !ok {
		return ErrIndexOutOfBounds
	}
	message, err := hb.SigningPayload()
	if err != nil {
		return err
	}
	if !e.verifier.Verify(identity, message, hb.Signature) {
		return ErrBadSignature
	}
	return nil
}

// CurrentSessionLiveness returns one row per authority of the active
// session, in index order. Empty when no session is active.
func (e *Engine) CurrentSessionLiveness() []AuthorityLiveness {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != phaseActive {
		return nil
	}
	out := make([]AuthorityLiveness, 0, e.set.Len())
	for idx, identity := range e.set.Identities() {
		out = append(out, AuthorityLiveness{
			AuthorityIndex: uint32(idx),
			Identity:       identity,
			Submitted:      e.ledger.Contains(uint32(idx)),
		})
	}
	return out
}

// IsOnline reports whether the identity had a valid heartbeat in the given
// session. The active session is answered from the ledger; earlier
// sessions from the archive, subject to the host's pruning policy.
func (e *Engine) IsOnline(identity ed25519.PublicKey, sessionIndex uint32) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase == phaseActive && sessionIndex == e.session {
		idx, ok := e.set.IndexOf(identity)
		if !ok {
			return false, nil
		}
		return e.ledger.Contains(idx), nil
	}
	if e.archive == nil {
		return false, ErrSessionNotRetained
	}
	rec, err := e.archive.GetSessionRecord(sessionIndex)
	if err != nil {
		return false, ErrSessionNotRetained
	}
	for idx, id := range rec.Authorities {
		if bytes.Equal(id, identity) {
			byteIdx := uint32(idx)
			return rec.Bitfield[byteIdx/8]&(1<<(byteIdx%8)) != 0, nil
		}
	}
	return false, nil
}

// SessionIndex returns the active session index; valid only while active.
func (e *Engine) SessionIndex() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// resumeFromArchive restores the bitmap of a session this node was already
// tracking before a restart. Accrued heartbeats survive the restart
// instead of being re-demanded from every authority.
func (e *Engine) resumeFromArchive() {
	if e.archive == nil {
		return
	}
	cur, err := e.archive.GetCurrent()
	if err != nil {
		return
	}
	if cur.SessionIndex != e.session || cur.ValidatorsCount != e.set.Len() {
		return
	}
	if e.ledger.Restore(cur.Bitfield) {
		e.log.Info().
			Uint32("session", e.session).
			Uint32("recorded", e.ledger.Recorded()).
			Msg("resumed session bitmap from archive")
	}
}

func (e *Engine) persistCurrent() {
	if e.archive == nil {
		return
	}
	err := e.archive.PutCurrent(store.CurrentRecord{
		SessionIndex:    e.session,
		ValidatorsCount: e.ledger.ValidatorsCount(),
		Bitfield:        e.ledger.Bitfield(),
	})
	if err != nil {
		// Persistence is best effort; the in-memory ledger stays
		// authoritative for the active session.
		e.log.Warn().Err(err).Msg("persist current bitmap")
	}
}

func (e *Engine) archiveSession(report *offence.OfflineReport) {
	if e.archive == nil {
		return
	}
	err := e.archive.PutSessionRecord(store.SessionRecord{
		SessionIndex:    e.session,
		ValidatorsCount: e.ledger.ValidatorsCount(),
		Bitfield:        e.ledger.Bitfield(),
		Authorities:     e.set.Identities(),
		Offline:         report.Offline,
	})
	if err != nil {
		e.log.Warn().Err(err).
			Uint32("session", e.session).
			Msg("archive session record")
	}
}

func rejectReason(err error) string {
	switch {
	case err == ErrNotActive:
		return "inactive"
	case err == ErrStaleSession:
		return "stale_session"
	case err == ErrFutureSession:
		return "future_session"
	case err == ErrWrongNetwork:
		return "wrong_network"
	case err == ErrIndexOutOfBounds:
		return "index_out_of_bounds"
	case err == ErrBadSignature:
		return "bad_signature"
	default:
		return "other"
	}
}
