package txtype

import (
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// Messaging type code.
const TypeMessaging uint8 = 1

// Messaging subtype codes.
const (
	SubtypeMessagingArbitraryMessage uint8 = 0
	SubtypeMessagingAccountInfo      uint8 = 5
)

func init() {
	Register(TypeMessaging, SubtypeMessagingArbitraryMessage, messagingArbitraryMessage{})
}

// messagingArbitraryMessage carries no ledger effect of its own: its
// payload lives in a PlainMessage appendage, which for v0 transactions
// Decode reads implicitly after the signature when bytes remain. Recipient is
// optional — a message may be broadcast with no designated recipient.
type messagingArbitraryMessage struct{}

func (messagingArbitraryMessage) ParseAttachment(v uint8, cur *wire.Cursor) (Attachment, error) {
	return parseEmptyAttachment(v, cur)
}

func (messagingArbitraryMessage) CanHaveRecipient() bool  { return true }
func (messagingArbitraryMessage) MustHaveRecipient() bool { return false }

func (messagingArbitraryMessage) BaselineFee() int64       { return oneQBR }
func (messagingArbitraryMessage) NextFee() int64           { return oneQBR }
func (messagingArbitraryMessage) FeeScheduleHeight() int32 { return 0 }

func (messagingArbitraryMessage) ApplyUnconfirmed(v txctx.View, sender *txctx.Account) bool {
	if sender.UnconfirmedBalance < v.FeeNQT() {
		return false
	}
	sender.UnconfirmedBalance -= v.FeeNQT()
	return true
}

func (messagingArbitraryMessage) UndoUnconfirmed(v txctx.View, sender *txctx.Account) {
	sender.UnconfirmedBalance += v.FeeNQT()
}

func (messagingArbitraryMessage) Apply(txctx.View, *txctx.Account, *txctx.Account) {}

func (messagingArbitraryMessage) IsDuplicate(txctx.View, Budget) bool            { return false }
func (messagingArbitraryMessage) IsBlockDuplicate(txctx.View, Budget) bool       { return false }
func (messagingArbitraryMessage) IsUnconfirmedDuplicate(txctx.View, Budget) bool { return false }

func (messagingArbitraryMessage) LedgerEvent() string { return "ARBITRARY_MESSAGE" }
