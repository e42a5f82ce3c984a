package tx

import (
	"sync"

	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/txtype"
)

// Lifecycle hooks: applyUnconfirmed reserves a tentative
// balance effect while a transaction sits in the unconfirmed pool; apply
// performs the confirmed effect at block inclusion (or, for a phased
// transaction, only the fee — the attachment effect is deferred to
// ApplyPhasedFinish); undoUnconfirmed reverses a reservation. The caller
// owns account storage and passes in the mutable snapshot; these hooks
// never look up accounts themselves.

// ApplyUnconfirmed reserves this transaction's tentative balance effect
// against sender, delegating to the type handler. Returns false if the
// reservation failed (insufficient unconfirmed balance — a double-spend
// attempt).
func (t *Transaction) ApplyUnconfirmed(sender *txctx.Account) bool {
	if sender == nil {
		return false
	}
	return t.handler.ApplyUnconfirmed(t, sender)
}

// UndoUnconfirmed reverses a reservation previously made by
// ApplyUnconfirmed, e.g. when the transaction is dropped from the
// unconfirmed pool without being confirmed.
func (t *Transaction) UndoUnconfirmed(sender *txctx.Account) {
	if sender == nil {
		return
	}
	t.handler.UndoUnconfirmed(t, sender)
}

// Apply performs this transaction's confirmed-balance effect at block
// inclusion. The fee is always charged here; handlers and
// appendages move only the amount and their own effects. If
// referencedTransactionFullHash is present, the anti-spam deposit is
// debited from sender's unconfirmed balance regardless of phasing. A
// phased transaction only has its fee charged here; its attachment effect
// fires later via ApplyPhasedFinish once the poll resolves.
func (t *Transaction) Apply(sender, recipient *txctx.Account) {
	if sender == nil {
		return
	}
	sender.BalanceNQT -= t.feeNQT
	if _, present := t.ReferencedTransactionFullHash(); present {
		sender.UnconfirmedBalance -= UnconfirmedPoolDepositQNT
	}
	if t.IsPhased() {
		return
	}
	t.applyAttachmentEffect(sender, recipient)
}

// ApplyPhasedFinish applies the deferred attachment effect of a phased
// transaction once its poll has resolved in favor. The fee was already
// charged by Apply at inclusion time, so this does not touch it again.
func (t *Transaction) ApplyPhasedFinish(sender, recipient *txctx.Account) {
	t.applyAttachmentEffect(sender, recipient)
}

func (t *Transaction) applyAttachmentEffect(sender, recipient *txctx.Account) {
	if t.handler != nil {
		t.handler.Apply(t, sender, recipient)
	}
	if t.appendages != nil {
		for _, a := range t.appendages.Ordered() {
			a.Apply(t, sender, recipient)
		}
	}
}

// IsPhased reports whether t carries a Phasing appendage.
func (t *Transaction) IsPhased() bool {
	return t.appendages != nil && t.appendages.Phasing != nil
}

// Duplicate detection: IsDuplicate/IsBlockDuplicate/
// IsUnconfirmedDuplicate delegate to the type handler, which decides what
// key (if any) identifies "one of this kind" and consults the supplied
// Budget. Most types (e.g. Payment.Ordinary) never report a duplicate.
func (t *Transaction) IsDuplicate(duplicates txtype.Budget) bool {
	return t.handler.IsDuplicate(t, duplicates)
}

func (t *Transaction) IsBlockDuplicate(duplicates txtype.Budget) bool {
	return t.handler.IsBlockDuplicate(t, duplicates)
}

func (t *Transaction) IsUnconfirmedDuplicate(duplicates txtype.Budget) bool {
	return t.handler.IsUnconfirmedDuplicate(t, duplicates)
}

// BudgetMap is a reference implementation of txtype.Budget: an in-memory
// per-key use counter with a fixed limit, reset per block by discarding
// and recreating the map. The exact budget value is type-specific and
// left to handlers; this map only enforces
// whatever limit the caller configures.
type BudgetMap struct {
	mu    sync.Mutex
	limit int
	used  map[string]int
}

// NewBudgetMap creates a BudgetMap allowing at most limit uses per key
// before Use reports exceeded.
func NewBudgetMap(limit int) *BudgetMap {
	return &BudgetMap{limit: limit, used: make(map[string]int)}
}

// Use records one use of key and reports whether doing so exceeds the
// configured limit.
func (m *BudgetMap) Use(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[key]++
	return m.used[key] > m.limit
}
