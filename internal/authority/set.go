package authority

import (
	"github.com/eigerco/bilberry/internal/crypto/ed25519"
)

// Set is the ordered authority set for a single session. The index of an
// authority is its position in the list supplied by the session scheduler;
// the set is immutable for the session's lifetime and replaced wholesale
// at rotation.
type Set struct {
	identities []ed25519.PublicKey
	indexByKey map[string]uint32
}

// NewSet assigns dense indices in the order supplied. The order is whatever
// the session scheduler provides; it is not re-sorted here. If the same
// identity appears more than once the first occurrence keeps its index.
func NewSet(identities []ed25519.PublicKey) *Set {
	s := &Set{
		identities: make([]ed25519.PublicKey, len(identities)),
		indexByKey: make(map[string]uint32, len(identities)),
	}
	for i, id := range identities {
		key := make(ed25519.PublicKey, len(id))
		copy(key, id)
		s.identities[i] = key
		if _, ok := s.indexByKey[string(key)]; !ok {
			s.indexByKey[string(key)] = uint32(i)
		}
	}
	return s
}

// Len returns the validators count of the set.
func (s *Set) Len() uint32 {
	return uint32(len(s.identities))
}

// IndexOf returns the authority index for an identity.
func (s *Set) IndexOf(identity ed25519.PublicKey) (uint32, bool) {
	idx, ok := s.indexByKey[string(identity)]
	return idx, ok
}

// IdentityOf returns the identity at the given authority index.
func (s *Set) IdentityOf(index uint32) (ed25519.PublicKey, bool) {
	if index >= uint32(len(s.identities)) {
		return nil, false
	}
	return s.identities[index], true
}

// Identities returns the ordered identity list. The returned slice must not
// be mutated by the caller.
func (s *Set) Identities() []ed25519.PublicKey {
	return s.identities
}
