// Package heartbeat defines the signed liveness attestation an authority
// submits once per period, and the signing capabilities around it.
package heartbeat

import (
	"fmt"

	"github.com/ChainSafe/gossamer/pkg/scale"

	"github.com/eigerco/bilberry/internal/crypto"
	"github.com/eigerco/bilberry/internal/crypto/ed25519"
)

// SigningContext prefixes every heartbeat signing payload so heartbeat
// signatures cannot collide with signatures from other subsystems.
const SigningContext = "$bilberry_heartbeat"

// Heartbeat is a single authority's liveness attestation. The signature
// covers the SCALE encoding of all fields except the signature itself.
type Heartbeat struct {
	// BlockNumber anchors the attestation: the authority has seen the
	// chain up through this height.
	BlockNumber uint64
	// SessionIndex scopes the attestation to exactly one session.
	SessionIndex uint32
	// AuthorityIndex is the submitter's position in the session's
	// authority set.
	AuthorityIndex uint32
	// NetworkID prevents replay of the same attestation on another chain.
	NetworkID crypto.NetworkID
	Signature crypto.Ed25519Signature
}

// payload is the signed portion of a heartbeat.
type payload struct {
	BlockNumber    uint64
	SessionIndex   uint32
	AuthorityIndex uint32
	NetworkID      crypto.NetworkID
}

// SigningPayload returns the exact bytes the signature is computed over:
// the signing context followed by the SCALE encoding of the unsigned fields.
func (h *Heartbeat) SigningPayload() ([]byte, error) {
	b, err := scale.Marshal(payload{
		BlockNumber:    h.BlockNumber,
		SessionIndex:   h.SessionIndex,
		AuthorityIndex: h.AuthorityIndex,
		NetworkID:      h.NetworkID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode heartbeat payload: %w", err)
	}
	return append([]byte(SigningContext), b...), nil
}

// Sign fills in the signature using the given signer.
func (h *Heartbeat) Sign(signer Signer) error {
	message, err := h.SigningPayload()
	if err != nil {
		return err
	}
	sig, err := signer.Sign(message)
	if err != nil {
		return fmt.Errorf("sign heartbeat: %w", err)
	}
	h.Signature = sig
	return nil
}

// Bytes returns the versioned wire encoding of the heartbeat.
func (h *Heartbeat) Bytes() ([]byte, error) {
	b, err := scale.Marshal(*h)
	if err != nil {
		return nil, fmt.Errorf("encode heartbeat: %w", err)
	}
	return b, nil
}

// FromBytes decodes a heartbeat from its wire encoding.
func FromBytes(data []byte) (*Heartbeat, error) {
	h := &Heartbeat{}
	if err := scale.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("decode heartbeat: %w", err)
	}
	return h, nil
}

// Signer produces heartbeat signatures. Signing happens on the authority's
// own node, off the serialized submission path, so it is modelled as an
// injected capability rather than something the core performs.
type Signer interface {
	Sign(message []byte) (crypto.Ed25519Signature, error)
	Public() ed25519.PublicKey
}

// Verifier checks heartbeat signatures against an authority's session key.
type Verifier interface {
	Verify(identity ed25519.PublicKey, message []byte, sig crypto.Ed25519Signature) bool
}

// KeySigner signs with an in-memory ed25519 session key.
type KeySigner struct {
	prv ed25519.PrivateKey
}

func NewKeySigner(prv ed25519.PrivateKey) *KeySigner {
	return &KeySigner{prv: prv}
}

func (s *KeySigner) Sign(message []byte) (crypto.Ed25519Signature, error) {
	var sig crypto.Ed25519Signature
	if len(s.prv) != ed25519.PrivateKeySize {
		return sig, fmt.Errorf("invalid ed25519 private key length %d", len(s.prv))
	}
	copy(sig[:], ed25519.Sign(s.prv, message))
	return sig, nil
}

func (s *KeySigner) Public() ed25519.PublicKey {
	return s.prv.Public().(ed25519.PublicKey)
}

// Ed25519Verifier verifies with ZIP-215 semantics so all nodes agree on
// which heartbeats carry valid signatures.
type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(identity ed25519.PublicKey, message []byte, sig crypto.Ed25519Signature) bool {
	if ed25519.IsEmpty(identity) {
		return false
	}
	return ed25519.Verify(identity, message, sig[:])
}
