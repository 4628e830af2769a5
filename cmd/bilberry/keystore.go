package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/eigerco/bilberry/internal/crypto/ed25519"
)

type keystoreFile struct {
	Ed25519Pub string `json:"ed25519_public_key"`
	Ed25519Prv string `json:"ed25519_private_key"`
}

func generateKeystore(path string) error {
	pub, prv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	data, err := json.MarshalIndent(keystoreFile{
		Ed25519Pub: hex.EncodeToString(pub),
		Ed25519Prv: hex.EncodeToString(prv),
	}, "", "	")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write keystore: %w", err)
	}
	return nil
}

func loadKeystore(path string) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read keystore: %w", err)
	}
	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, nil, fmt.Errorf("parse keystore: %w", err)
	}
	prv, err := hex.DecodeString(ks.Ed25519Prv)
	if err != nil || len(prv) != ed25519.PrivateKeySize {
		return nil, nil, fmt.Errorf("invalid private key in keystore")
	}
	pub, err := hex.DecodeString(ks.Ed25519Pub)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid public key in keystore")
	}
	return pub, prv, nil
}

func parseAuthorities(hexKeys []string) ([]ed25519.PublicKey, error) {
	authorities := make([]ed25519.PublicKey, 0, len(hexKeys))
	for i, h := range hexKeys {
		key, err := hex.DecodeString(h)
		if err != nil || len(key) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("invalid authority key at index %d", i)
		}
		authorities = append(authorities, key)
	}
	return authorities, nil
}
