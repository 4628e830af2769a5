package crypto

type Hash [HashSize]byte
type Ed25519Signature [Ed25519SignatureSize]byte

// NetworkID identifies the chain a heartbeat belongs to. Signatures over
// payloads that embed a NetworkID cannot be replayed across chains.
type NetworkID [NetworkIDSize]byte
