// Package store persists per-session liveness records so historical
// online/offline queries survive restarts and the current session's
// bitmap can be resumed after a crash.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/eigerco/bilberry/internal/crypto/ed25519"
	"github.com/eigerco/bilberry/pkg/db"
)

const (
	prefixSession byte = iota + 1
	prefixCurrent
)

var ErrSessionNotFound = errors.New("session record not found")

// SessionRecord is the archived outcome of one completed session.
type SessionRecord struct {
	SessionIndex    uint32
	ValidatorsCount uint32
	// Bitfield is the final liveness bitmap, one bit per authority index.
	Bitfield []byte
	// Authorities is the session's ordered authority set.
	Authorities []ed25519.PublicKey
	// Offline are the identities reported absent, in index order.
	Offline []ed25519.PublicKey
}

// CurrentRecord is the in-progress bitmap of the active session,
// rewritten on every accepted heartbeat.
type CurrentRecord struct {
	SessionIndex    uint32
	ValidatorsCount uint32
	Bitfield        []byte
}

type Liveness struct {
	db.KVStore
}

// NewLiveness creates a liveness archive over any KVStore.
func NewLiveness(kv db.KVStore) *Liveness {
	return &Liveness{KVStore: kv}
}

// PutSessionRecord archives a completed session and clears the
// current-session bitmap in one atomic batch.
func (s *Liveness) PutSessionRecord(rec SessionRecord) error {
	bytes, err := scale.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	batch := s.NewBatch()
	defer batch.Close()
	if err := batch.Put(makeSessionKey(rec.SessionIndex), bytes); err != nil {
		return fmt.Errorf("put session record: %w", err)
	}
	if err := batch.Delete([]byte{prefixCurrent}); err != nil {
		return fmt.Errorf("clear current record: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit session record: %w", err)
	}
	return nil
}

// GetSessionRecord retrieves an archived session.
func (s *Liveness) GetSessionRecord(sessionIndex uint32) (SessionRecord, error) {
	bytes, err := s.Get(makeSessionKey(sessionIndex))
	if errors.Is(err, db.ErrNotFound) {
		return SessionRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session record: %w", err)
	}
	var rec SessionRecord
	if err := scale.Unmarshal(bytes, &rec); err != nil {
		return SessionRecord{}, fmt.Errorf("unmarshal session record: %w", err)
	}
	return rec, nil
}

// HasSessionRecord reports whether a session has been archived.
func (s *Liveness) HasSessionRecord(sessionIndex uint32) (bool, error) {
	return s.Has(makeSessionKey(sessionIndex))
}

// PutCurrent stores the active session's bitmap.
func (s *Liveness) PutCurrent(rec CurrentRecord) error {
	bytes, err := scale.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal current record: %w", err)
	}
	if err := s.Put([]byte{prefixCurrent}, bytes); err != nil {
		return fmt.Errorf("put current record: %w", err)
	}
	return nil
}

// GetCurrent retrieves the active session's bitmap, if any.
func (s *Liveness) GetCurrent() (CurrentRecord, error) {
	bytes, err := s.Get([]byte{prefixCurrent})
	if errors.Is(err, db.ErrNotFound) {
		return CurrentRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return CurrentRecord{}, fmt.Errorf("get current record: %w", err)
	}
	var rec CurrentRecord
	if err := scale.Unmarshal(bytes, &rec); err != nil {
		return CurrentRecord{}, fmt.Errorf("unmarshal current record: %w", err)
	}
	return rec, nil
}

// DeleteSessionsBefore prunes archived sessions older than the given
// session index. The pruning horizon is the host's policy, not ours.
func (s *Liveness) DeleteSessionsBefore(sessionIndex uint32) error {
	iter, err := s.NewIterator(makeSessionKey(0), makeSessionKey(sessionIndex))
	if err != nil {
		return fmt.Errorf("create iterator: %w", err)
	}
	defer iter.Close()

	batch := s.NewBatch()
	defer batch.Close()
	for iter.Next() {
		if err := batch.Delete(iter.Key()); err != nil {
			return fmt.Errorf("delete session record: %w", err)
		}
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("commit prune: %w", err)
	}
	return nil
}

// makeSessionKey builds prefix + big-endian session index, so iteration
// order matches session order.
func makeSessionKey(sessionIndex uint32) []byte {
	key := make([]byte, 5)
	key[0] = prefixSession
	binary.BigEndian.PutUint32(key[1:], sessionIndex)
	return key
}
