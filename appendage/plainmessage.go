package appendage

import (
	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// MaxMessageLength bounds the payload of a plain or encrypted message
// appendage.
const MaxMessageLength = 1000

// PlainMessage is an arbitrary, unencrypted message attached to a
// transaction.
type PlainMessage struct {
	version uint8
	IsText  bool
	Data    []byte
}

// NewPlainMessage builds a PlainMessage appendage at the current wire
// version (1).
func NewPlainMessage(data []byte, isText bool) *PlainMessage {
	return &PlainMessage{version: 1, IsText: isText, Data: data}
}

func (m *PlainMessage) Version() uint8 { return m.version }

func (m *PlainMessage) Size() int { return 1 + 1 + 2 + len(m.Data) }

func (m *PlainMessage) FullSize() int { return m.Size() }

func (m *PlainMessage) Emit(dst []byte) []byte {
	dst = append(dst, m.version)
	var flags uint8
	if m.IsText {
		flags |= 1
	}
	dst = append(dst, flags)
	dst = wire.AppendU16LE(dst, uint16(len(m.Data)))
	dst = append(dst, m.Data...)
	return dst
}

// ParsePlainMessage reads a PlainMessage from cur.
func ParsePlainMessage(cur *wire.Cursor) (*PlainMessage, error) {
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
	data, err := cur.ReadExact(int(n))
	if err != nil {
		return nil, err
	}
	return &PlainMessage{
		version: v,
		IsText:  flags&1 != 0,
		Data:    append([]byte(nil), data...),
	}, nil
}

func (m *PlainMessage) JSON() map[string]any {
	out := map[string]any{"messageIsText": m.IsText}
	if m.IsText {
		out["message"] = string(m.Data)
	} else {
		out["message"] = hexString(m.Data)
	}
	out["messageVersion"] = m.version
	return out
}

func (m *PlainMessage) Validate(txctx.View) error {
	if len(m.Data) > MaxMessageLength {
		return errAppendage("message too long")
	}
	return nil
}

func (m *PlainMessage) ValidateAtFinish(v txctx.View) error { return m.Validate(v) }

func (m *PlainMessage) Apply(txctx.View, *txctx.Account, *txctx.Account) {}

func (m *PlainMessage) BaselineFee() int64       { return OneQBR / 10 }
func (m *PlainMessage) NextFee() int64           { return OneQBR / 10 }
func (m *PlainMessage) BaselineFeeHeight() int32 { return 0 }
func (m *PlainMessage) NextFeeHeight() int32     { return 0 }
