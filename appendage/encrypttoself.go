package appendage

import (
	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// EncryptToSelfMessage is a message encrypted to the sender's own public
// key — a private note-to-self attached to a transaction. It shares EncryptedMessage's wire shape but derives the
// shared secret against the sender's own key instead of a recipient's.
type EncryptToSelfMessage struct {
	EncryptedMessage
}

// NewEncryptToSelfMessage builds an EncryptToSelfMessage appendage
// carrying plaintext, to be encrypted by a subsequent call to Encrypt.
func NewEncryptToSelfMessage(plaintext []byte, isText bool) *EncryptToSelfMessage {
	return &EncryptToSelfMessage{EncryptedMessage{version: 1, IsText: isText, plaintext: plaintext}}
}

// Encrypt derives the shared secret against the sender's own public key
// (ignoring any recipientPub argument, which EncryptedMessage.Encrypt
// would otherwise use).
func (m *EncryptToSelfMessage) Encrypt(secretPhrase []byte, _ [32]byte) error {
	local, err := crypto.DeriveX25519KeyPair(secretPhrase)
	if err != nil {
		return err
	}
	return m.EncryptedMessage.Encrypt(secretPhrase, local.Public)
}

// ParseEncryptToSelfMessage reads an EncryptToSelfMessage from cur.
func ParseEncryptToSelfMessage(cur *wire.Cursor) (*EncryptToSelfMessage, error) {
	inner, err := ParseEncryptedMessage(cur)
	if err != nil {
		return nil, err
	}
	return &EncryptToSelfMessage{*inner}, nil
}

func (m *EncryptToSelfMessage) JSON() map[string]any {
	return map[string]any{
		"encryptToSelfMessage": map[string]any{
			"data":   hexString(m.ciphertext),
			"nonce":  hexString(m.nonce[:]),
			"isText": m.IsText,
		},
	}
}

func (m *EncryptToSelfMessage) Validate(v txctx.View) error { return m.EncryptedMessage.Validate(v) }
func (m *EncryptToSelfMessage) ValidateAtFinish(v txctx.View) error {
	return m.EncryptedMessage.ValidateAtFinish(v)
}
