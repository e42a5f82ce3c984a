// Package txtype implements the attachment dispatcher named but left
// unshaped by the engine's data model: a (Type, Subtype)-keyed registry of
// Handler implementations, each owning one transaction type's attachment
// parsing, fee schedule, duplicate-detection and balance-effect rules.
//
// Handler never takes *tx.Transaction directly: like package appendage, it
// depends only on the txctx.View/Account projections, so tx can import
// txtype to drive dispatch without a cycle.
package txtype

import (
	"fmt"

	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// Attachment is the parsed, typed payload of a transaction's mandatory
// attachment section. Ordinary payments carry an empty
// attachment; other types carry type-specific fields.
type Attachment interface {
	// Version is the attachment's own wire version byte, or 0 for types
	// with no versioned attachment.
	Version() uint8
	// Size is the on-wire size in bytes.
	Size() int
	// Emit appends the attachment's wire bytes to dst.
	Emit(dst []byte) []byte
	// JSON returns the attachment's fields as a JSON-mergeable map.
	JSON() map[string]any
}

// Budget is the narrow duplicate-detection contract a Handler consults;
// a real implementation tracks a per-block or per-account quota of
// transactions of a given kind (e.g. one account-info update per account
// per block). Kept as an interface so txtype never depends on the
// mempool/storage layer that implements it.
type Budget interface {
	// Use records one use of key and reports whether doing so exceeds the
	// handler-defined budget for key.
	Use(key string) (exceeded bool)
}

// Handler owns one transaction (type, subtype) pair's attachment parsing
// and business rules.
type Handler interface {
	// ParseAttachment reads this type's attachment from cur. v is the
	// attachment's own version byte, already consumed by the caller from
	// the envelope when applicable; implementations that version their
	// attachment read it from cur themselves and may ignore v.
	ParseAttachment(v uint8, cur *wire.Cursor) (Attachment, error)

	// CanHaveRecipient / MustHaveRecipient constrain the recipient field
	CanHaveRecipient() bool
	MustHaveRecipient() bool

	// BaselineFee / NextFee / FeeScheduleHeight mirror appendage.Appendage's
	// height-aware fee shape for the attachment's own fee contribution.
	BaselineFee() int64
	NextFee() int64
	FeeScheduleHeight() int32

	// ApplyUnconfirmed reserves the unconfirmed-balance effect of this
	// attachment against sender, reporting whether the reservation
	// succeeded (insufficient balance is the caller's cue to reject).
	ApplyUnconfirmed(v txctx.View, sender *txctx.Account) bool
	// UndoUnconfirmed releases a reservation previously made by
	// ApplyUnconfirmed (transaction dropped from the unconfirmed pool).
	UndoUnconfirmed(v txctx.View, sender *txctx.Account)
	// Apply performs the confirmed-balance effect once the transaction is
	// included in a block (and, for phased transactions, once the poll
	// finishes).
	Apply(v txctx.View, sender, recipient *txctx.Account)

	// IsDuplicate / IsBlockDuplicate / IsUnconfirmedDuplicate let a type
	// enforce at-most-one-of-kind rules (e.g. one account-info update per
	// account per block) against the supplied Budget.
	IsDuplicate(v txctx.View, duplicates Budget) bool
	IsBlockDuplicate(v txctx.View, duplicates Budget) bool
	IsUnconfirmedDuplicate(v txctx.View, duplicates Budget) bool

	// LedgerEvent names the ledger event this type records on apply, for
	// accounting/audit trails external to this engine.
	LedgerEvent() string
}

// Key identifies a transaction type/subtype pair.
type Key struct {
	Type    uint8
	Subtype uint8
}

func (k Key) String() string { return fmt.Sprintf("%d.%d", k.Type, k.Subtype) }

var registry = map[Key]Handler{}

// Register installs h as the Handler for (typ, subtype). Intended to be
// called from package init functions; panics on a duplicate registration
// since that indicates a programming error, not a runtime condition a
// caller can recover from.
func Register(typ, subtype uint8, h Handler) {
	if subtype > 0x0f {
		panic(fmt.Sprintf("txtype: subtype %d does not fit the packed version/subtype wire byte", subtype))
	}
	k := Key{typ, subtype}
	if _, exists := registry[k]; exists {
		panic(fmt.Sprintf("txtype: handler already registered for %s", k))
	}
	registry[k] = h
}

// Lookup returns the Handler registered for (typ, subtype), if any.
func Lookup(typ, subtype uint8) (Handler, bool) {
	h, ok := registry[Key{typ, subtype}]
	return h, ok
}
