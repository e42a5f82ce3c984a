package appendage

import (
	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// EncryptedMessage is a message encrypted to the recipient's public key.
// It implements Encryptable: the plaintext is
// supplied at construction time and Encrypt() must be called, deriving the
// Curve25519 shared secret with the recipient, before the appendage is
// serialized.
type EncryptedMessage struct {
	version    uint8
	IsText     bool
	plaintext  []byte
	ciphertext []byte
	nonce      [16]byte
	encrypted  bool
}

// NewEncryptedMessage builds an EncryptedMessage appendage carrying
// plaintext, to be encrypted by a subsequent call to Encrypt.
func NewEncryptedMessage(plaintext []byte, isText bool) *EncryptedMessage {
	return &EncryptedMessage{version: 1, IsText: isText, plaintext: plaintext}
}

func (m *EncryptedMessage) Version() uint8 { return m.version }

func (m *EncryptedMessage) Size() int { return 1 + 1 + 2 + len(m.ciphertext) + 16 }

func (m *EncryptedMessage) FullSize() int { return m.Size() }

// Encrypt derives the Curve25519 shared secret between the sender's key
// (from secretPhrase) and recipientPub, then AES-CBC encrypts the
// appendage's plaintext.
func (m *EncryptedMessage) Encrypt(secretPhrase []byte, recipientPub [32]byte) error {
	if recipientPub == ([32]byte{}) {
		return errAppendage("encrypted message: recipient public key required")
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
	return nil
}

func (m *EncryptedMessage) Emit(dst []byte) []byte {
	dst = append(dst, m.version)
	var flags uint8
	if m.IsText {
		flags |= 1
	}
	dst = append(dst, flags)
	dst = wire.AppendU16LE(dst, uint16(len(m.ciphertext)))
	dst = append(dst, m.ciphertext...)
	dst = append(dst, m.nonce[:]...)
	return dst
}

// ParseEncryptedMessage reads an EncryptedMessage from cur. The resulting
// appendage carries ciphertext only; decryption happens out of band by a
// recipient holding the matching private key.
func ParseEncryptedMessage(cur *wire.Cursor) (*EncryptedMessage, error) {
	v, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	flags, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	n, err := cur.ReadU16LE()
	if err != nil {
		return nil, err
	}
	ct, err := cur.ReadExact(int(n))
	if err != nil {
		return nil, err
	}
	nonceBytes, err := cur.ReadExact(16)
	if err != nil {
		return nil, err
	}
	m := &EncryptedMessage{
		version:    v,
		IsText:     flags&1 != 0,
		ciphertext: append([]byte(nil), ct...),
		encrypted:  true,
	}
	copy(m.nonce[:], nonceBytes)
	return m, nil
}

func (m *EncryptedMessage) JSON() map[string]any {
	return map[string]any{
		"encryptedMessage": map[string]any{
			"data":   hexString(m.ciphertext),
			"nonce":  hexString(m.nonce[:]),
			"isText": m.IsText,
		},
	}
}

func (m *EncryptedMessage) Validate(txctx.View) error {
	if !m.encrypted {
		return errAppendage("encrypted message was never encrypted")
	}
	if len(m.ciphertext) > MaxMessageLength+16 {
		return errAppendage("encrypted message too long")
	}
	return nil
}

func (m *EncryptedMessage) ValidateAtFinish(v txctx.View) error { return m.Validate(v) }

func (m *EncryptedMessage) Apply(txctx.View, *txctx.Account, *txctx.Account) {}

func (m *EncryptedMessage) BaselineFee() int64       { return OneQBR / 10 }
func (m *EncryptedMessage) NextFee() int64           { return OneQBR / 10 }
func (m *EncryptedMessage) BaselineFeeHeight() int32 { return 0 }
func (m *EncryptedMessage) NextFeeHeight() int32     { return 0 }

// Encrypted reports whether the payload has been encrypted yet.
func (m *EncryptedMessage) Encrypted() bool { return m.encrypted }

// Ciphertext exposes the raw encrypted bytes, e.g. for tests asserting
// Encrypt was applied before serialization.
func (m *EncryptedMessage) Ciphertext() []byte { return m.ciphertext }
