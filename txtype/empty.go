package txtype

import "qbrchain.dev/txengine/wire"

// EmptyAttachment is the zero-length attachment carried by transaction
// types with no type-specific payload (Payment.Ordinary,
// Messaging.ArbitraryMessage).
type EmptyAttachment struct{}

func (EmptyAttachment) Version() uint8         { return 0 }
func (EmptyAttachment) Size() int              { return 0 }
func (EmptyAttachment) Emit(dst []byte) []byte { return dst }
func (EmptyAttachment) JSON() map[string]any   { return map[string]any{} }

func parseEmptyAttachment(uint8, *wire.Cursor) (Attachment, error) {
	return EmptyAttachment{}, nil
}
