package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Std is the default, pure-Go Provider. It derives a Curve25519 (Ed25519)
// keypair deterministically from a secret phrase: the signing seed is
// SHA256(secretPhrase). This is a development/reference implementation;
// production deployments may swap in an HSM-backed Provider without any
// change to the tx/appendage/txtype packages.
type Std struct{}

// SHA256 returns the SHA-256 digest of input.
func (Std) SHA256(input []byte) [32]byte {
	return sha256.Sum256(input)
}

func seedFromSecretPhrase(secretPhrase []byte) []byte {
	seed := sha256.Sum256(secretPhrase)
	return seed[:]
}

// PublicKey derives the 32-byte Ed25519 public key for secretPhrase.
func (Std) PublicKey(secretPhrase []byte) [32]byte {
	priv := ed25519.NewKeyFromSeed(seedFromSecretPhrase(secretPhrase))
	var pub [32]byte
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return pub
}

// Sign produces a deterministic 64-byte signature over msg using the key
// derived from secretPhrase.
func (Std) Sign(msg []byte, secretPhrase []byte) ([64]byte, error) {
	priv := ed25519.NewKeyFromSeed(seedFromSecretPhrase(secretPhrase))
	sig := ed25519.Sign(priv, msg)
	var out [64]byte
	if len(sig) != len(out) {
		return out, fmt.Errorf("crypto: unexpected signature length %d", len(sig))
	}
	copy(out[:], sig)
	return out, nil
}

// Verify reports whether sig is a valid signature over msg under pub.
func (Std) Verify(sig [64]byte, msg []byte, pub [32]byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:])
}

// AccountID derives the account id from pub as the leading 8 bytes,
// little-endian, of SHA256(pub).
func (Std) AccountID(pub [32]byte) uint64 {
	digest := sha256.Sum256(pub[:])
	return binary.LittleEndian.Uint64(digest[:8])
}
