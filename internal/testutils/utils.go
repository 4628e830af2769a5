package testutils

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eigerco/bilberry/internal/crypto"
	"github.com/eigerco/bilberry/internal/crypto/ed25519"
)

func RandomHash(t *testing.T) crypto.Hash {
	hash := make([]byte, crypto.HashSize)
	_, err := rand.Read(hash)
	require.NoError(t, err)
	return crypto.Hash(hash)
}

func RandomNetworkID(t *testing.T) crypto.NetworkID {
	id := make([]byte, crypto.NetworkIDSize)
	_, err := rand.Read(id)
	require.NoError(t, err)
	return crypto.NetworkID(id)
}

func RandomED25519PublicKey(t *testing.T) ed25519.PublicKey {
	key := make([]byte, ed25519.PublicKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func RandomED25519Keypair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, prv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub, prv
}

func RandomEd25519Signature(t *testing.T) crypto.Ed25519Signature {
	var sig crypto.Ed25519Signature
	_, err := rand.Read(sig[:])
	require.NoError(t, err)
	return sig
}

// RandomIdentities returns n distinct random authority identities.
func RandomIdentities(t *testing.T, n int) []ed25519.PublicKey {
	identities := make([]ed25519.PublicKey, n)
	for i := range identities {
		identities[i] = RandomED25519PublicKey(t)
	}
	return identities
}

// RandomKeyring returns n generated keypairs with the public keys usable as
// an authority set.
func RandomKeyring(t *testing.T, n int) ([]ed25519.PublicKey, []ed25519.PrivateKey) {
	pubs := make([]ed25519.PublicKey, n)
	prvs := make([]ed25519.PrivateKey, n)
	for i := range pubs {
		pubs[i], prvs[i] = RandomED25519Keypair(t)
	}
	return pubs, prvs
}
