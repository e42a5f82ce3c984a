// Package appendage implements the typed, versioned, self-describing
// optional transaction sections: plain message,
// encrypted message, public-key announcement, encrypt-to-self message,
// phasing, prunable plain message, and prunable encrypted message.
//
// Each appendage implements the shared Appendage capability set. Two
// orthogonal capabilities are modeled as separate interfaces an appendage
// may additionally satisfy: Encryptable (needs a secret phrase applied
// before serialization) and Prunable (payload may be elided from storage
// and rehydrated later).
package appendage

import (
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// Flag bits, LSB first, matching wire order.
const (
	FlagMessage                  = 0x01
	FlagEncryptedMessage         = 0x02
	FlagPublicKeyAnnouncement    = 0x04
	FlagEncryptToSelfMessage     = 0x08
	FlagPhasing                  = 0x10
	FlagPrunablePlainMessage     = 0x20
	FlagPrunableEncryptedMessage = 0x40
)

// orderedFlags lists every appendage flag bit in ascending order, the
// fixed wire order.
var orderedFlags = []int{
	FlagMessage,
	FlagEncryptedMessage,
	FlagPublicKeyAnnouncement,
	FlagEncryptToSelfMessage,
	FlagPhasing,
	FlagPrunablePlainMessage,
	FlagPrunableEncryptedMessage,
}

// Appendage is the capability set shared by every optional transaction
// section.
type Appendage interface {
	// Version is the appendage's own wire version byte.
	Version() uint8

	// Size is the on-wire size in bytes, excluding any payload carried
	// out of band by a Prunable appendage.
	Size() int

	// FullSize is Size plus any externally carried payload.
	FullSize() int

	// Emit appends the appendage's wire bytes to dst and returns the
	// extended slice.
	Emit(dst []byte) []byte

	// JSON returns the appendage's fields as a JSON-mergeable map.
	JSON() map[string]any

	// Validate checks the appendage in normal (non-atFinish) admission
	// mode.
	Validate(v txctx.View) error

	// ValidateAtFinish checks the appendage when it is being applied
	// after a phasing poll resolves.
	ValidateAtFinish(v txctx.View) error

	// Apply performs the appendage's effect, if any, on sender/recipient.
	Apply(v txctx.View, sender, recipient *txctx.Account)

	// BaselineFee is the appendage's fee contribution at the protocol's
	// genesis fee schedule.
	BaselineFee() int64

	// NextFee is the appendage's fee contribution at the next scheduled
	// fee-schedule change, used by height-aware callers; BaselineFee is
	// used when height < NextFeeHeight.
	NextFee() int64

	// BaselineFeeHeight / NextFeeHeight bound which of BaselineFee/NextFee
	// applies at a given height.
	BaselineFeeHeight() int32
	NextFeeHeight() int32
}

// FeeAt returns a's applicable fee at the given height.
func FeeAt(a Appendage, height int32) int64 {
	if height >= a.NextFeeHeight() {
		return a.NextFee()
	}
	return a.BaselineFee()
}

// Encryptable is implemented by appendages that must have their payload
// encrypted under the sender's secret phrase before serialization
// (EncryptedMessage, EncryptToSelfMessage, PrunableEncryptedMessage).
type Encryptable interface {
	Appendage
	// Encrypt derives the shared secret for recipientPub (or the sender's
	// own key, for encrypt-to-self) from secretPhrase and encrypts the
	// appendage's plaintext payload in place.
	Encrypt(secretPhrase []byte, recipientPub [32]byte) error
	// Encrypted reports whether Encrypt has already been applied (or the
	// appendage was parsed from the wire, which only ever carries
	// ciphertext).
	Encrypted() bool
}

// Prunable is implemented by appendages whose payload may be elided from
// archival storage and rehydrated lazily (PrunablePlainMessage,
// PrunableEncryptedMessage).
type Prunable interface {
	Appendage
	// Hash is the content hash left on the main chain when the payload
	// itself has been pruned.
	Hash() [32]byte
	// IsPruned reports whether the in-memory payload has been elided.
	IsPruned() bool
	// LoadPrunable rehydrates the payload from a side channel. includeExpired
	// allows rehydrating payloads past their normal retention window.
	LoadPrunable(v txctx.View, includeExpired bool) error
}

// Bag is the ordered set of appendages a transaction may carry. At most
// one of each kind may be present; nil fields mean "absent".
type Bag struct {
	Message                  *PlainMessage
	EncryptedMessage         *EncryptedMessage
	PublicKeyAnnouncement    *PublicKeyAnnouncement
	EncryptToSelfMessage     *EncryptToSelfMessage
	Phasing                  *Phasing
	PrunablePlainMessage     *PrunablePlainMessage
	PrunableEncryptedMessage *PrunableEncryptedMessage
}

// Flags computes the flag word for the appendages currently present in b.
func (b *Bag) Flags() int32 {
	var flags int32
	if b.Message != nil {
		flags |= FlagMessage
	}
	if b.EncryptedMessage != nil {
		flags |= FlagEncryptedMessage
	}
	if b.PublicKeyAnnouncement != nil {
		flags |= FlagPublicKeyAnnouncement
	}
	if b.EncryptToSelfMessage != nil {
		flags |= FlagEncryptToSelfMessage
	}
	if b.Phasing != nil {
		flags |= FlagPhasing
	}
	if b.PrunablePlainMessage != nil {
		flags |= FlagPrunablePlainMessage
	}
	if b.PrunableEncryptedMessage != nil {
		flags |= FlagPrunableEncryptedMessage
	}
	return flags
}

// Ordered returns every present appendage in ascending flag-bit order —
// the fixed wire order.
func (b *Bag) Ordered() []Appendage {
	out := make([]Appendage, 0, len(orderedFlags))
	for _, f := range orderedFlags {
		if a := b.at(f); a != nil {
			out = append(out, a)
		}
	}
	return out
}

func (b *Bag) at(flag int) Appendage {
	switch flag {
	case FlagMessage:
		if b.Message != nil {
			return b.Message
		}
	case FlagEncryptedMessage:
		if b.EncryptedMessage != nil {
			return b.EncryptedMessage
		}
	case FlagPublicKeyAnnouncement:
		if b.PublicKeyAnnouncement != nil {
			return b.PublicKeyAnnouncement
		}
	case FlagEncryptToSelfMessage:
		if b.EncryptToSelfMessage != nil {
			return b.EncryptToSelfMessage
		}
	case FlagPhasing:
		if b.Phasing != nil {
			return b.Phasing
		}
	case FlagPrunablePlainMessage:
		if b.PrunablePlainMessage != nil {
			return b.PrunablePlainMessage
		}
	case FlagPrunableEncryptedMessage:
		if b.PrunableEncryptedMessage != nil {
			return b.PrunableEncryptedMessage
		}
	}
	return nil
}

// Size sums the wire size of every present appendage.
func (b *Bag) Size() int {
	total := 0
	for _, a := range b.Ordered() {
		total += a.Size()
	}
	return total
}

// Emit appends every present appendage, in ascending flag-bit order, to dst.
func (b *Bag) Emit(dst []byte) []byte {
	for _, a := range b.Ordered() {
		dst = a.Emit(dst)
	}
	return dst
}

// ParseBag reads every appendage whose bit is set in flags from cur, in
// ascending bit order.
func ParseBag(cur *wire.Cursor, flags int32) (*Bag, error) {
	b := &Bag{}
	for _, f := range orderedFlags {
		if flags&int32(f) == 0 {
			continue
		}
		if err := parseInto(b, f, cur); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func parseInto(b *Bag, flag int, cur *wire.Cursor) error {
	switch flag {
	case FlagMessage:
		a, err := ParsePlainMessage(cur)
		if err != nil {
			return err
		}
		b.Message = a
	case FlagEncryptedMessage:
		a, err := ParseEncryptedMessage(cur)
		if err != nil {
			return err
		}
		b.EncryptedMessage = a
	case FlagPublicKeyAnnouncement:
		a, err := ParsePublicKeyAnnouncement(cur)
		if err != nil {
			return err
		}
		b.PublicKeyAnnouncement = a
	case FlagEncryptToSelfMessage:
		a, err := ParseEncryptToSelfMessage(cur)
		if err != nil {
			return err
		}
		b.EncryptToSelfMessage = a
	case FlagPhasing:
		a, err := ParsePhasing(cur)
		if err != nil {
			return err
		}
		b.Phasing = a
	case FlagPrunablePlainMessage:
		a, err := ParsePrunablePlainMessage(cur)
		if err != nil {
			return err
		}
		b.PrunablePlainMessage = a
	case FlagPrunableEncryptedMessage:
		a, err := ParsePrunableEncryptedMessage(cur)
		if err != nil {
			return err
		}
		b.PrunableEncryptedMessage = a
	}
	return nil
}
