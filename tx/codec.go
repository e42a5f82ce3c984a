package tx

import (
	"qbrchain.dev/txengine/appendage"
	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/txtype"
	"qbrchain.dev/txengine/wire"
)

// wireFields is the header+attachment+appendage-bag view the codec encodes
// and decodes. Both Transaction and Builder project into it so encoding
// logic lives in one place regardless of which side calls it.
type wireFields struct {
	version uint8
	typ     uint8
	subtype uint8

	timestamp int32
	deadline  int16

	senderPublicKey [32]byte

	recipientID uint64
	amountNQT   int64
	feeNQT      int64

	referencedTransactionFullHash *[32]byte
	signature                     *[64]byte

	ecBlockHeight int32
	ecBlockID     uint64

	attachment txtype.Attachment
	appendages *appendage.Bag

	canHaveRecipient bool
}

func (t *Transaction) fields() wireFields {
	return wireFields{
		canHaveRecipient:               t.handler.CanHaveRecipient(),
		version:                        t.version,
		typ:                            t.typ,
		subtype:                        t.subtype,
		timestamp:                      t.timestamp,
		deadline:                       t.deadline,
		senderPublicKey:                t.senderPublicKey,
		recipientID:                    t.recipientID,
		amountNQT:                      t.amountNQT,
		feeNQT:                         t.feeNQT,
		referencedTransactionFullHash:  t.referencedTransactionFullHash,
		signature:                      t.signature,
		ecBlockHeight:                  t.ecBlockHeight,
		ecBlockID:                      t.ecBlockID,
		attachment:                     t.attachment,
		appendages:                     t.appendages,
	}
}

// recipientOnWire returns the recipient id substituted on the wire: the
// real recipient if the type allows one, else CreatorID.
func recipientOnWire(f wireFields) uint64 {
	if !f.canHaveRecipient {
		return CreatorID
	}
	return f.recipientID
}

// encodeWire serializes f to its canonical binary layout with the real
// signature; unsignedWire zeroes the 64-byte signature field instead, the
// distinction signing and identity derivation depend on. Both go through
// encodeWireOpt's zeroSignature flag.
func encodeWire(f wireFields) []byte {
	return encodeWireOpt(f, false)
}

func unsignedWire(f wireFields) []byte {
	return encodeWireOpt(f, true)
}

func encodeWireOpt(f wireFields, zeroSignature bool) []byte {
	size := headerSize(f.version) + f.attachment.Size()
	if f.appendages != nil {
		size += f.appendages.Size()
	}
	dst := make([]byte, 0, size)

	dst = append(dst, f.typ)
	dst = append(dst, (f.version<<4)|(f.subtype&0x0f))
	dst = wire.AppendI32LE(dst, f.timestamp)
	dst = wire.AppendU16LE(dst, uint16(f.deadline))
	dst = append(dst, f.senderPublicKey[:]...)
	dst = wire.AppendU64LE(dst, recipientOnWire(f))
	dst = wire.AppendI64LE(dst, f.amountNQT)
	dst = wire.AppendI64LE(dst, f.feeNQT)
	if f.referencedTransactionFullHash != nil {
		dst = append(dst, f.referencedTransactionFullHash[:]...)
	} else {
		dst = append(dst, zero32[:]...)
	}
	if !zeroSignature && f.signature != nil {
		dst = append(dst, f.signature[:]...)
	} else {
		dst = append(dst, zero64[:]...)
	}
	if f.version > 0 {
		var bag appendage.Bag
		if f.appendages != nil {
			bag = *f.appendages
		}
		dst = wire.AppendI32LE(dst, bag.Flags())
		dst = wire.AppendI32LE(dst, f.ecBlockHeight)
		dst = wire.AppendU64LE(dst, f.ecBlockID)
	}
	dst = f.attachment.Emit(dst)
	if f.appendages != nil {
		dst = f.appendages.Emit(dst)
	}
	return dst
}

// Bytes returns the canonical wire encoding of t, including its real
// signature. Each call re-encodes t and returns a fresh slice; unlike
// UnsignedBytes, the result is not cached.
func (t *Transaction) Bytes() []byte {
	return append([]byte(nil), encodeWire(t.fields())...)
}

// UnsignedBytes returns t's canonical encoding with the signature field
// zeroed, the stable function of consensus fields that signing and id
// derivation both consume. Memoized via a once-cell so
// repeated calls (e.g. during validation and identity derivation) do not
// re-encode.
func (t *Transaction) UnsignedBytes() []byte {
	return t.unsignedCell.get(func() []byte {
		return unsignedWire(t.fields())
	})
}

// Decode parses raw wire bytes into a pre-populated Builder.
// The caller supplies the crypto.Provider the resulting transaction will
// use for signature verification and account-id derivation.
func Decode(b []byte, cryptoProvider crypto.Provider) (*Builder, error) {
	cur := wire.NewCursor(b)

	typ, err := cur.ReadU8()
	if err != nil {
		return nil, notValid("PARSE", "truncated: type")
	}
	packed, err := cur.ReadU8()
	if err != nil {
		return nil, notValid("PARSE", "truncated: version/subtype")
	}
	version := packed >> 4
	subtype := packed & 0x0f

	handler, ok := txtype.Lookup(typ, subtype)
	if !ok {
		return nil, notValid("UNKNOWN_TYPE", "no handler registered for type/subtype")
	}

	timestamp, err := cur.ReadI32LE()
	if err != nil {
		return nil, notValid("PARSE", "truncated: timestamp")
	}
	deadline, err := cur.ReadI16LE()
	if err != nil {
		return nil, notValid("PARSE", "truncated: deadline")
	}

	senderPubBytes, err := cur.ReadExact(32)
	if err != nil {
		return nil, notValid("PARSE", "truncated: senderPublicKey")
	}
	var senderPub [32]byte
	copy(senderPub[:], senderPubBytes)

	recipientID, err := cur.ReadU64LE()
	if err != nil {
		return nil, notValid("PARSE", "truncated: recipientId")
	}
	if !handler.CanHaveRecipient() {
		// The wire carries CreatorID in the recipient slot for types that
		// forbid a recipient; the decoded transaction's recipient is 0.
		recipientID = 0
	}
	amountNQT, err := cur.ReadI64LE()
	if err != nil {
		return nil, notValid("PARSE", "truncated: amountNQT")
	}
	feeNQT, err := cur.ReadI64LE()
	if err != nil {
		return nil, notValid("PARSE", "truncated: feeNQT")
	}

	refHashBytes, err := cur.ReadExact(32)
	if err != nil {
		return nil, notValid("PARSE", "truncated: referencedTransactionFullHash")
	}
	var refHash *[32]byte
	if !allZero(refHashBytes) {
		var h [32]byte
		copy(h[:], refHashBytes)
		refHash = &h
	}

	sigBytes, err := cur.ReadExact(64)
	if err != nil {
		return nil, notValid("PARSE", "truncated: signature")
	}
	var signature *[64]byte
	if !allZero(sigBytes) {
		var s [64]byte
		copy(s[:], sigBytes)
		signature = &s
	}

	var flags int32
	var ecBlockHeight int32
	var ecBlockID uint64
	if version > 0 {
		flags, err = cur.ReadI32LE()
		if err != nil {
			return nil, notValid("PARSE", "truncated: flags")
		}
		ecBlockHeight, err = cur.ReadI32LE()
		if err != nil {
			return nil, notValid("PARSE", "truncated: ecBlockHeight")
		}
		ecBlockID, err = cur.ReadU64LE()
		if err != nil {
			return nil, notValid("PARSE", "truncated: ecBlockId")
		}
	}

	attachment, err := handler.ParseAttachment(0, cur)
	if err != nil {
		return nil, notValid("PARSE", "attachment: "+err.Error())
	}

	var bag *appendage.Bag
	if version > 0 {
		bag, err = appendage.ParseBag(cur, flags)
		if err != nil {
			return nil, notValid("PARSE", "appendage: "+err.Error())
		}
	} else if typ == txtype.TypeMessaging && subtype == txtype.SubtypeMessagingArbitraryMessage {
		// Legacy v0 rule: an implicit plain message appendage
		// follows the signature for ARBITRARY_MESSAGE transactions.
		if cur.Remaining() > 0 {
			msg, err := appendage.ParsePlainMessage(cur)
			if err != nil {
				return nil, notValid("PARSE", "legacy message: "+err.Error())
			}
			bag = &appendage.Bag{Message: msg}
		}
	}

	if cur.Remaining() > 0 {
		return nil, notValid("TOO_LONG", "too long")
	}

	b2 := NewBuilder(typ, subtype, amountNQT, feeNQT, senderPub, cryptoProvider)
	b2.version = version
	b2.timestamp, b2.timestampSet = timestamp, true
	b2.deadline = deadline
	b2.recipientID = recipientID
	b2.referencedTransactionFullHash = refHash
	b2.signature = signature
	b2.ecBlockHeight, b2.ecBlockSet = ecBlockHeight, true
	b2.ecBlockID = ecBlockID
	b2.attachment = attachment
	b2.appendages = bag
	b2.handler = handler
	return b2, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// legacyPackedSubtypeMask exists only to document that the wire packs
// version into the upper nibble: subtypes above 15 cannot be represented
// and are rejected by handler registration, not by the codec.
const legacyPackedSubtypeMask = 0x0f
