package tx

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	"qbrchain.dev/txengine/appendage"
)

// JSON builds the canonical JSON mirror of t: header fields,
// unsigned 64-bit ids as decimal strings, and an "attachment" object
// merged from the mandatory attachment plus every non-prunable appendage's
// own JSON fields, in wire order. Prunable appendages with an elided
// payload contribute only what loadPrunable has already hydrated; their
// full out-of-band shape is PrunableAttachmentsJSON.
func (t *Transaction) JSON() map[string]any {
	m := map[string]any{
		"type":            t.typ,
		"subtype":         t.subtype,
		"version":         t.version,
		"timestamp":       t.timestamp,
		"deadline":        t.deadline,
		"senderPublicKey": hex.EncodeToString(t.senderPublicKey[:]),
		"amountNQT":       t.amountNQT,
		"feeNQT":          t.feeNQT,
		"ecBlockHeight":   t.ecBlockHeight,
		"ecBlockId":       strconv.FormatUint(t.ecBlockID, 10),
	}
	if t.handler.CanHaveRecipient() {
		m["recipient"] = strconv.FormatUint(t.recipientID, 10)
	}
	if t.referencedTransactionFullHash != nil {
		m["referencedTransactionFullHash"] = hex.EncodeToString(t.referencedTransactionFullHash[:])
	}
	if t.signature != nil {
		m["signature"] = hex.EncodeToString(t.signature[:])
	}

	attachmentJSON := map[string]any{}
	if t.attachment != nil {
		for k, v := range t.attachment.JSON() {
			attachmentJSON[k] = v
		}
	}
	if t.appendages != nil {
		for _, a := range t.appendages.Ordered() {
			if p, ok := a.(appendage.Prunable); ok && p.IsPruned() {
				continue
			}
			for k, v := range a.JSON() {
				attachmentJSON[k] = v
			}
		}
	}
	m["attachment"] = attachmentJSON
	return m
}

// MarshalJSON satisfies encoding/json.Marshaler, so *Transaction can be
// passed directly to json.Marshal by API handlers.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.JSON())
}

// PrunableAttachmentsJSON returns the side-channel JSON bag for t's
// prunable appendages, the shape delivered separately from
// the main transaction JSON so archival nodes that pruned the payload
// still serve the non-prunable fields.
func (t *Transaction) PrunableAttachmentsJSON() map[string]any {
	out := map[string]any{}
	if t.appendages == nil {
		return out
	}
	if t.appendages.PrunablePlainMessage != nil {
		for k, v := range t.appendages.PrunablePlainMessage.JSON() {
			out[k] = v
		}
	}
	if t.appendages.PrunableEncryptedMessage != nil {
		for k, v := range t.appendages.PrunableEncryptedMessage.JSON() {
			out[k] = v
		}
	}
	return out
}
