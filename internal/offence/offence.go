// Package offence derives the set of authorities that failed to prove
// liveness for a session and hands it to the external slashing subsystem.
package offence

import (
	"encoding/hex"
	"errors"

	"github.com/rs/zerolog"

	"github.com/eigerco/bilberry/internal/authority"
	"github.com/eigerco/bilberry/internal/crypto/ed25519"
)

// ErrReporterUnavailable wraps failures of the external offence sink. A
// failed report is a lost notification, not a consistency violation; it
// must never block session rotation.
var ErrReporterUnavailable = errors.New("offence reporter unavailable")

// OfflineReport lists the authorities of one session with no valid
// heartbeat on record. Produced once per session end; ownership passes to
// the slashing subsystem.
type OfflineReport struct {
	SessionIndex uint32
	// Offline is ordered by ascending authority index.
	Offline []ed25519.PublicKey
}

// Reporter is the boundary to the external slashing subsystem. The core
// only guarantees each offline identity for a session is reported at most
// once; severity and acceptance are the sink's business.
type Reporter interface {
	ReportOffline(report *OfflineReport) error
}

// DeriveOffline diffs the full authority set against the liveness record.
// A set of fewer than two authorities yields an empty report: a lone
// authority cannot meaningfully be judged offline by its peers.
func DeriveOffline(sessionIndex uint32, set *authority.Set, submitted func(uint32) bool) *OfflineReport {
	report := &OfflineReport{SessionIndex: sessionIndex}
	if set == nil || set.Len() < 2 {
		return report
	}
	for idx, identity := range set.Identities() {
		if !submitted(uint32(idx)) {
			report.Offline = append(report.Offline, identity)
		}
	}
	return report
}

// LogReporter writes offline reports to the log. It stands in for a real
// slashing sink in deployments where punishment is handled out of band.
type LogReporter struct {
	log zerolog.Logger
}

func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) ReportOffline(report *OfflineReport) error {
	offline := make([]string, 0, len(report.Offline))
	for _, id := range report.Offline {
		offline = append(offline, hex.EncodeToString(id))
	}
	r.log.Warn().
		Uint32("session", report.SessionIndex).
		Strs("offline", offline).
		Msg("authorities offline")
	return nil
}
