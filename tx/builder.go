package tx

import (
	"time"

	"qbrchain.dev/txengine/appendage"
	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/facade"
	"qbrchain.dev/txengine/txtype"
)

// GenesisEpochUnix is the protocol epoch: 2020-01-01T00:00:00Z. Timestamps on the wire are
// seconds since this instant, not since the Unix epoch.
const GenesisEpochUnix int64 = 1577836800

// ProtocolNow returns the current protocol time (seconds since
// GenesisEpochUnix), the default a Builder uses when no timestamp was set
// explicitly.
func ProtocolNow() int32 {
	return int32(time.Now().Unix() - GenesisEpochUnix)
}

// Builder accumulates a transaction's fields and produces an immutable
// Transaction via Build. It is not safe for concurrent use;
// the Transaction it produces is.
type Builder struct {
	version uint8
	typ     uint8
	subtype uint8

	timestamp    int32
	timestampSet bool
	deadline     int16

	senderPublicKey [32]byte

	recipientID uint64
	amountNQT   int64
	feeNQT      int64

	referencedTransactionFullHash *[32]byte
	signature                     *[64]byte

	recipientPublicKey [32]byte

	ecBlockHeight int32
	ecBlockID     uint64
	ecBlockSet    bool

	attachment txtype.Attachment
	appendages *appendage.Bag
	handler    txtype.Handler

	crypto     crypto.Provider
	blockchain facade.Blockchain

	correctInvalidFees bool
	currentHeight      int32

	built bool
}

// NewBuilder creates a Builder for the given (typ, subtype), failing loudly
// at Build time (not here) if no handler is registered for that pair. The
// caller must supply the crypto.Provider the built transaction will use
// for signing, verification, and account-id derivation.
func NewBuilder(typ, subtype uint8, amountNQT, feeNQT int64, senderPublicKey [32]byte, cryptoProvider crypto.Provider) *Builder {
	return &Builder{
		version:         1,
		typ:             typ,
		subtype:         subtype,
		deadline:        1440,
		senderPublicKey: senderPublicKey,
		amountNQT:       amountNQT,
		feeNQT:          feeNQT,
		crypto:          cryptoProvider,
	}
}

// --- fluent setters ---

func (b *Builder) Version(v uint8) *Builder  { b.version = v; return b }
func (b *Builder) Timestamp(ts int32) *Builder {
	b.timestamp, b.timestampSet = ts, true
	return b
}
func (b *Builder) Deadline(d int16) *Builder { b.deadline = d; return b }
func (b *Builder) Fee(f int64) *Builder      { b.feeNQT = f; return b }
func (b *Builder) Recipient(id uint64) *Builder {
	b.recipientID = id
	return b
}

// RecipientPublicKey supplies the recipient's public key for encryptable
// appendages; Build derives the message-encryption shared secret from it.
func (b *Builder) RecipientPublicKey(pub [32]byte) *Builder {
	b.recipientPublicKey = pub
	return b
}
func (b *Builder) ReferencedTransactionFullHash(h [32]byte) *Builder {
	b.referencedTransactionFullHash = &h
	return b
}
func (b *Builder) Signature(sig [64]byte) *Builder {
	b.signature = &sig
	return b
}
func (b *Builder) ECBlock(height int32, id uint64) *Builder {
	b.ecBlockHeight, b.ecBlockID, b.ecBlockSet = height, id, true
	return b
}
func (b *Builder) Attachment(a txtype.Attachment) *Builder { b.attachment = a; return b }
func (b *Builder) Appendages(bag *appendage.Bag) *Builder  { b.appendages = bag; return b }
func (b *Builder) Blockchain(bc facade.Blockchain) *Builder {
	b.blockchain = bc
	return b
}
func (b *Builder) CorrectInvalidFees(v bool) *Builder { b.correctInvalidFees = v; return b }
func (b *Builder) CurrentHeight(h int32) *Builder     { b.currentHeight = h; return b }

// Build consumes the builder's accumulated fields and produces an
// immutable Transaction, optionally signing it with secretPhrase.
// Passing an empty secretPhrase with no prior Signature() call yields
// a valid, unsigned transaction suitable for further assembly or gossip of
// a partially-built multi-party transaction.
//
// Build may be called at most once per Builder: the builder, not just the
// transaction, is single-use once consumed, so a stale reference can never
// produce a second, differently-signed value.
func (b *Builder) Build(secretPhrase []byte) (*Transaction, error) {
	if b.built {
		return nil, illegalState("ALREADY_BUILT", "builder already consumed")
	}

	handler := b.handler
	if handler == nil {
		h, ok := txtype.Lookup(b.typ, b.subtype)
		if !ok {
			return nil, notValid("UNKNOWN_TYPE", "no handler registered for type/subtype")
		}
		handler = h
	}
	attachment := b.attachment
	if attachment == nil {
		attachment = txtype.EmptyAttachment{}
	}

	if !b.timestampSet {
		b.timestamp = ProtocolNow()
	}
	if !b.ecBlockSet && b.blockchain != nil {
		b.ecBlockHeight, b.ecBlockID = b.blockchain.ECBlock(b.timestamp)
	}

	hasSecret := len(secretPhrase) > 0
	if b.signature != nil && hasSecret {
		return nil, notValid("ALREADY_SIGNED", "already signed")
	}

	// Encryptable appendages are sealed before any bytes are produced, so
	// the signature covers ciphertext.
	if hasSecret && b.appendages != nil {
		for _, a := range b.appendages.Ordered() {
			e, ok := a.(appendage.Encryptable)
			if !ok || e.Encrypted() {
				continue
			}
			if err := e.Encrypt(secretPhrase, b.recipientPublicKey); err != nil {
				return nil, notValid("ENCRYPT_FAILED", err.Error())
			}
		}
	}

	// Fee resolution.
	fee := b.feeNQT
	isGenesis := b.timestamp == 0
	if !isGenesis {
		needsFloor := fee <= 0 || (b.correctInvalidFees && b.signature == nil)
		if needsFloor {
			minFee := b.minimumFeeNQT(handler, attachment, b.currentHeight)
			if minFee > fee {
				logger.Debug().Int64("fee", fee).Int64("floor", minFee).Msg("fee raised to floor")
				fee = minFee
			}
		}
	}
	b.feeNQT = fee

	t := &Transaction{
		version:                       b.version,
		typ:                           b.typ,
		subtype:                       b.subtype,
		timestamp:                     b.timestamp,
		deadline:                      b.deadline,
		senderPublicKey:               b.senderPublicKey,
		recipientID:                   b.recipientID,
		amountNQT:                     b.amountNQT,
		feeNQT:                        b.feeNQT,
		referencedTransactionFullHash: b.referencedTransactionFullHash,
		signature:                     b.signature,
		ecBlockHeight:                 b.ecBlockHeight,
		ecBlockID:                     b.ecBlockID,
		attachment:                    attachment,
		appendages:                    b.appendages,
		handler:                       handler,
		crypto:                        b.crypto,
	}
	if !handler.CanHaveRecipient() {
		t.recipientID = 0
		t.amountNQT = 0
	}

	// Signature resolution.
	switch {
	case t.signature != nil:
		// adopt as-is
	case hasSecret:
		if t.crypto == nil {
			return nil, illegalState("NO_CRYPTO_PROVIDER", "builder has no crypto.Provider")
		}
		pub := t.crypto.PublicKey(secretPhrase)
		var zero [32]byte
		if t.senderPublicKey != zero && t.senderPublicKey != pub {
			return nil, notValid("PUBLIC_KEY_MISMATCH", "senderPublicKey does not match secretPhrase")
		}
		t.senderPublicKey = pub
		sig, err := t.crypto.Sign(t.UnsignedBytes(), secretPhrase)
		if err != nil {
			return nil, notValid("SIGN_FAILED", err.Error())
		}
		t.signature = &sig
	default:
		// neither signature nor secret phrase: unsigned transaction.
	}

	b.built = true
	return t, nil
}

// minimumFeeNQT sums the attachment's own fee schedule plus every present
// appendage's applicable fee at height, adding ONE_QBR if a referenced
// transaction hash is present.
func (b *Builder) minimumFeeNQT(handler txtype.Handler, attachment txtype.Attachment, height int32) int64 {
	_ = attachment // attachment fee, if any beyond the handler schedule, is folded into handler.BaselineFee/NextFee
	return computeMinimumFee(handler, b.appendages, b.referencedTransactionFullHash != nil, height)
}
