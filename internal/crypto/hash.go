package crypto

import (
	"golang.org/x/crypto/blake2b"
)

func HashData(data []byte) Hash {
	hash := blake2b.Sum256(data)
	return hash
}

// NetworkIDFromChainName derives the network identifier from a
// human-readable chain name. Fixed per deployment.
func NetworkIDFromChainName(name string) NetworkID {
	return NetworkID(blake2b.Sum256([]byte(name)))
}
