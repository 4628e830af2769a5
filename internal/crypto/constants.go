package crypto

const (
	HashSize             = 32
	Ed25519PublicSize    = 32
	Ed25519PrivateSize   = 64
	Ed25519SignatureSize = 64
	NetworkIDSize        = 32
)
