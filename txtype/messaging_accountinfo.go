package txtype

import (
	"fmt"

	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

const maxAccountInfoFieldLength = 100

func init() {
	Register(TypeMessaging, SubtypeMessagingAccountInfo, messagingAccountInfo{})
}

// AccountInfoAttachment carries the name/description pair an account may
// publish about itself.
type AccountInfoAttachment struct {
	version     uint8
	Name        string
	Description string
}

func (a AccountInfoAttachment) Version() uint8 { return a.version }

func (a AccountInfoAttachment) Size() int {
	return 1 + 2 + len(a.Name) + 2 + len(a.Description)
}

func (a AccountInfoAttachment) Emit(dst []byte) []byte {
	dst = append(dst, a.version)
	dst = wire.AppendU16LE(dst, uint16(len(a.Name)))
	dst = append(dst, a.Name...)
	dst = wire.AppendU16LE(dst, uint16(len(a.Description)))
	dst = append(dst, a.Description...)
	return dst
}

func (a AccountInfoAttachment) JSON() map[string]any {
	return map[string]any{"name": a.Name, "description": a.Description}
}

// NewAccountInfoAttachment builds an AccountInfoAttachment.
func NewAccountInfoAttachment(name, description string) AccountInfoAttachment {
	return AccountInfoAttachment{version: 1, Name: name, Description: description}
}

// messagingAccountInfo publishes a name/description pair for the sending
// account; it never has a recipient and carries no balance effect beyond
// the fee.
type messagingAccountInfo struct{}

func (messagingAccountInfo) ParseAttachment(_ uint8, cur *wire.Cursor) (Attachment, error) {
	v, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	nameLen, err := cur.ReadU16LE()
	if err != nil {
		return nil, err
	}
	nameBytes, err := cur.ReadExact(int(nameLen))
	if err != nil {
		return nil, err
	}
	descLen, err := cur.ReadU16LE()
	if err != nil {
		return nil, err
	}
	descBytes, err := cur.ReadExact(int(descLen))
	if err != nil {
		return nil, err
	}
	if len(nameBytes) > maxAccountInfoFieldLength || len(descBytes) > maxAccountInfoFieldLength {
		return nil, fmt.Errorf("txtype: account info field too long")
	}
	return AccountInfoAttachment{version: v, Name: string(nameBytes), Description: string(descBytes)}, nil
}

func (messagingAccountInfo) CanHaveRecipient() bool  { return false }
func (messagingAccountInfo) MustHaveRecipient() bool { return false }

func (messagingAccountInfo) BaselineFee() int64       { return oneQBR }
func (messagingAccountInfo) NextFee() int64           { return oneQBR }
func (messagingAccountInfo) FeeScheduleHeight() int32 { return 0 }

func (messagingAccountInfo) ApplyUnconfirmed(v txctx.View, sender *txctx.Account) bool {
	if sender.UnconfirmedBalance < v.FeeNQT() {
		return false
	}
	sender.UnconfirmedBalance -= v.FeeNQT()
	return true
}

func (messagingAccountInfo) UndoUnconfirmed(v txctx.View, sender *txctx.Account) {
	sender.UnconfirmedBalance += v.FeeNQT()
}

func (messagingAccountInfo) Apply(txctx.View, *txctx.Account, *txctx.Account) {}

// IsDuplicate enforces at most one account-info update per account per
// block, consulting the caller-supplied Budget keyed by sender id.
func (messagingAccountInfo) IsDuplicate(v txctx.View, duplicates Budget) bool {
	return duplicates.Use(fmt.Sprintf("account-info:%d", v.SenderID()))
}

func (messagingAccountInfo) IsBlockDuplicate(v txctx.View, duplicates Budget) bool {
	return duplicates.Use(fmt.Sprintf("account-info:%d", v.SenderID()))
}

func (messagingAccountInfo) IsUnconfirmedDuplicate(v txctx.View, duplicates Budget) bool {
	return duplicates.Use(fmt.Sprintf("account-info:unconfirmed:%d", v.SenderID()))
}

func (messagingAccountInfo) LedgerEvent() string { return "ACCOUNT_INFO" }
