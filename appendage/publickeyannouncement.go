package appendage

import (
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// PublicKeyAnnouncement announces the recipient's public key so a future
// transaction can be sent to an account that has never transacted before.
type PublicKeyAnnouncement struct {
	version   uint8
	PublicKey [32]byte
}

// NewPublicKeyAnnouncement builds a PublicKeyAnnouncement appendage.
func NewPublicKeyAnnouncement(pub [32]byte) *PublicKeyAnnouncement {
	return &PublicKeyAnnouncement{version: 1, PublicKey: pub}
}

func (a *PublicKeyAnnouncement) Version() uint8 { return a.version }
func (a *PublicKeyAnnouncement) Size() int      { return 1 + 32 }
func (a *PublicKeyAnnouncement) FullSize() int  { return a.Size() }

func (a *PublicKeyAnnouncement) Emit(dst []byte) []byte {
	dst = append(dst, a.version)
	dst = append(dst, a.PublicKey[:]...)
	return dst
}

// ParsePublicKeyAnnouncement reads a PublicKeyAnnouncement from cur.
func ParsePublicKeyAnnouncement(cur *wire.Cursor) (*PublicKeyAnnouncement, error) {
	v, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	pubBytes, err := cur.ReadExact(32)
	if err != nil {
		return nil, err
	}
	a := &PublicKeyAnnouncement{version: v}
	copy(a.PublicKey[:], pubBytes)
	return a, nil
}

func (a *PublicKeyAnnouncement) JSON() map[string]any {
	return map[string]any{
		"recipientPublicKey": hexString(a.PublicKey[:]),
	}
}

var zeroPub [32]byte

func (a *PublicKeyAnnouncement) Validate(v txctx.View) error {
	if a.PublicKey == zeroPub {
		return errAppendage("public key announcement: zero public key")
	}
	if v.RecipientID() == 0 {
		return errAppendage("public key announcement requires a recipient")
	}
	return nil
}

func (a *PublicKeyAnnouncement) ValidateAtFinish(v txctx.View) error { return a.Validate(v) }

// Apply is a no-op: it does not bind the announced public key to the
// recipient account and leaves the sender and recipient snapshots
// unchanged.
func (a *PublicKeyAnnouncement) Apply(txctx.View, *txctx.Account, *txctx.Account) {}

func (a *PublicKeyAnnouncement) BaselineFee() int64       { return OneQBR }
func (a *PublicKeyAnnouncement) NextFee() int64           { return OneQBR }
func (a *PublicKeyAnnouncement) BaselineFeeHeight() int32 { return 0 }
func (a *PublicKeyAnnouncement) NextFeeHeight() int32     { return 0 }
