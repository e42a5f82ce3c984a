package appendage

import (
	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// PrunableEncryptedMessage is an encrypted-message appendage whose
// ciphertext may be elided from long-term storage; only its content hash
// is consensus critical.
type PrunableEncryptedMessage struct {
	version    uint8
	Timestamp  int32
	hash       [32]byte
	plaintext  []byte
	ciphertext []byte // nil when pruned
	nonce      [16]byte
	encrypted  bool
	hasHash    bool
}

// NewPrunableEncryptedMessage builds a PrunableEncryptedMessage carrying
// plaintext, to be encrypted by a subsequent call to Encrypt.
func NewPrunableEncryptedMessage(timestamp int32, plaintext []byte) *PrunableEncryptedMessage {
	return &PrunableEncryptedMessage{version: 1, Timestamp: timestamp, plaintext: plaintext}
}

// Encrypt derives the Curve25519 shared secret with recipientPub and
// encrypts the plaintext payload, then computes and records its content
// hash.
func (m *PrunableEncryptedMessage) Encrypt(secretPhrase []byte, recipientPub [32]byte) error {
	if recipientPub == ([32]byte{}) {
		return errAppendage("prunable encrypted message: recipient public key required")
	}
	local, err := crypto.DeriveX25519KeyPair(secretPhrase)
	if err != nil {
		return err
	}
	secret, err := crypto.SharedSecret(local.Private, recipientPub)
	if err != nil {
		return err
	}
	ct, nonce, err := crypto.EncryptMessage(secret, m.plaintext)
	if err != nil {
		return err
	}
	m.ciphertext = ct
	m.nonce = nonce
	m.encrypted = true
	m.hash = (crypto.Std{}).SHA256(ct)
	m.hasHash = true
	return nil
}

// Encrypted reports whether the payload has been encrypted yet.
func (m *PrunableEncryptedMessage) Encrypted() bool { return m.encrypted }

func (m *PrunableEncryptedMessage) Hash() [32]byte { return m.hash }
func (m *PrunableEncryptedMessage) IsPruned() bool { return m.ciphertext == nil }
func (m *PrunableEncryptedMessage) Version() uint8 { return m.version }

func (m *PrunableEncryptedMessage) Size() int { return 1 + 4 + 32 }

func (m *PrunableEncryptedMessage) FullSize() int {
	return m.Size() + len(m.ciphertext) + 16
}

func (m *PrunableEncryptedMessage) Emit(dst []byte) []byte {
	dst = append(dst, m.version)
	dst = wire.AppendI32LE(dst, m.Timestamp)
	dst = append(dst, m.hash[:]...)
	return dst
}

// ParsePrunableEncryptedMessage reads the on-chain stub from cur.
func ParsePrunableEncryptedMessage(cur *wire.Cursor) (*PrunableEncryptedMessage, error) {
	v, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	ts, err := cur.ReadI32LE()
	if err != nil {
		return nil, err
	}
	hashBytes, err := cur.ReadExact(32)
	if err != nil {
		return nil, err
	}
	m := &PrunableEncryptedMessage{version: v, Timestamp: ts, hasHash: true, encrypted: true}
	copy(m.hash[:], hashBytes)
	return m, nil
}

func (m *PrunableEncryptedMessage) JSON() map[string]any {
	out := map[string]any{
		"prunableEncryptedMessageHash": hexString(m.hash[:]),
		"timestamp":                    m.Timestamp,
	}
	if m.ciphertext != nil {
		out["encryptedMessage"] = map[string]any{
			"data":  hexString(m.ciphertext),
			"nonce": hexString(m.nonce[:]),
		}
	}
	return out
}

func (m *PrunableEncryptedMessage) Validate(txctx.View) error {
	if !m.hasHash {
		return errAppendage("prunable encrypted message: missing hash")
	}
	if m.ciphertext != nil && len(m.ciphertext) > MaxMessageLength+16 {
		return errAppendage("prunable encrypted message too long")
	}
	return nil
}

func (m *PrunableEncryptedMessage) ValidateAtFinish(v txctx.View) error { return m.Validate(v) }

func (m *PrunableEncryptedMessage) Apply(txctx.View, *txctx.Account, *txctx.Account) {}

func (m *PrunableEncryptedMessage) BaselineFee() int64       { return OneQBR / 20 }
func (m *PrunableEncryptedMessage) NextFee() int64           { return OneQBR / 20 }
func (m *PrunableEncryptedMessage) BaselineFeeHeight() int32 { return 0 }
func (m *PrunableEncryptedMessage) NextFeeHeight() int32     { return 0 }

func (m *PrunableEncryptedMessage) LoadPrunable(v txctx.View, includeExpired bool) error {
	loaderMu.RLock()
	l := activeLoader
	loaderMu.RUnlock()
	if l == nil {
		return errAppendage("prunable encrypted message: no loader installed")
	}
	data, ok := l.LoadPrunablePayload(m.hash, includeExpired)
	if !ok {
		return errAppendage("prunable encrypted message: payload not available")
	}
	m.ciphertext = data
	return nil
}

// Ciphertext returns the hydrated ciphertext, or nil if pruned.
func (m *PrunableEncryptedMessage) Ciphertext() []byte { return m.ciphertext }
