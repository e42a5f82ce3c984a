package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/curve25519"
)

// X25519KeyPair is a Diffie-Hellman keypair used to derive the shared
// secret for encrypted-message appendages. It is distinct from the
// Ed25519 signing keypair derived by Std: NXT-style message encryption and
// transaction signing use the same secret phrase but different points on
// the curve, so the two are derived with domain-separated seeds.
type X25519KeyPair struct {
	Private [32]byte
	Public  [32]byte
}

// DeriveX25519KeyPair derives a Curve25519 Diffie-Hellman keypair from a
// secret phrase, for use by Encryptable appendages.
func DeriveX25519KeyPair(secretPhrase []byte) (X25519KeyPair, error) {
	seed := sha256.Sum256(append([]byte("qbr-x25519-dh/"), secretPhrase...))
	var priv [32]byte
	copy(priv[:], seed[:])
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return X25519KeyPair{}, err
	}
	var pubArr [32]byte
	copy(pubArr[:], pub)
	return X25519KeyPair{Private: priv, Public: pubArr}, nil
}

// SharedSecret computes the Curve25519 Diffie-Hellman shared secret between
// a local private key and a remote public key, then hashes it with SHA-256
// to derive a uniformly distributed AES key.
func SharedSecret(localPriv [32]byte, remotePub [32]byte) ([32]byte, error) {
	raw, err := curve25519.X25519(localPriv[:], remotePub[:])
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(raw), nil
}
