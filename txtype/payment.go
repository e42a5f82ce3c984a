package txtype

import (
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// Payment type code.
const TypePayment uint8 = 0

// oneQBR mirrors tx.OneQBR; redeclared here so txtype stays independent of
// package tx (which imports txtype to drive dispatch).
const oneQBR = 100_000_000

// Payment subtype codes.
const SubtypePaymentOrdinary uint8 = 0

func init() {
	Register(TypePayment, SubtypePaymentOrdinary, paymentOrdinary{})
}

// paymentOrdinary is the plain value-transfer transaction type: no
// attachment, recipient required, fee is the flat protocol minimum.
type paymentOrdinary struct{}

func (paymentOrdinary) ParseAttachment(v uint8, cur *wire.Cursor) (Attachment, error) {
	return parseEmptyAttachment(v, cur)
}

func (paymentOrdinary) CanHaveRecipient() bool  { return true }
func (paymentOrdinary) MustHaveRecipient() bool { return true }

func (paymentOrdinary) BaselineFee() int64       { return oneQBR }
func (paymentOrdinary) NextFee() int64           { return oneQBR }
func (paymentOrdinary) FeeScheduleHeight() int32 { return 0 }

func (paymentOrdinary) ApplyUnconfirmed(v txctx.View, sender *txctx.Account) bool {
	total := v.AmountNQT() + v.FeeNQT()
	if sender.UnconfirmedBalance < total {
		return false
	}
	sender.UnconfirmedBalance -= total
	return true
}

func (paymentOrdinary) UndoUnconfirmed(v txctx.View, sender *txctx.Account) {
	sender.UnconfirmedBalance += v.AmountNQT() + v.FeeNQT()
}

// Apply moves the amount; the network fee is charged by the transaction
// lifecycle at inclusion, not here.
func (paymentOrdinary) Apply(v txctx.View, sender, recipient *txctx.Account) {
	sender.BalanceNQT -= v.AmountNQT()
	if recipient != nil {
		recipient.BalanceNQT += v.AmountNQT()
	}
}

func (paymentOrdinary) IsDuplicate(txctx.View, Budget) bool            { return false }
func (paymentOrdinary) IsBlockDuplicate(txctx.View, Budget) bool       { return false }
func (paymentOrdinary) IsUnconfirmedDuplicate(txctx.View, Budget) bool { return false }

func (paymentOrdinary) LedgerEvent() string { return "ORDINARY_PAYMENT" }
