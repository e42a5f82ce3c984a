// Package txctx defines the minimal read-only view of a transaction that
// the appendage and txtype packages need, so that neither has to import
// package tx (which imports both of them to drive parsing, validation, and
// dispatch). *tx.Transaction implements View; appendages and type handlers
// only ever see transactions through it.
package txctx

// View is the read-only projection of a transaction exposed to appendages
// and transaction-type handlers.
type View interface {
	Type() uint8
	Subtype() uint8
	Version() uint8
	Timestamp() int32
	SenderID() uint64
	SenderPublicKey() [32]byte
	RecipientID() uint64
	AmountNQT() int64
	FeeNQT() int64
	Height() int32 // -1 if not yet attached to a block
	Signed() bool
}

// Account is the minimal account projection appendages and handlers
// mutate during apply/undo. It is a data-carrying snapshot, not a live
// facade.Account handle, so that packages here stay decoupled from the
// concrete account store.
type Account struct {
	ID                 uint64
	BalanceNQT         int64
	UnconfirmedBalance int64
}
