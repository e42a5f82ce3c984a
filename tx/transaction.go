package tx

import (
	"sync"
	"sync/atomic"

	"qbrchain.dev/txengine/appendage"
	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/txtype"
)

// Transaction is the immutable, possibly-signed value produced by Builder.
// Every exported getter is safe for concurrent use once Build
// returns; the only permitted mutation afterward is block attachment/
// detachment (SetBlock/ClearBlock), which the external storage layer calls
// when a transaction is included in or reorganized out of a block.
type Transaction struct {
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

	handler txtype.Handler
	crypto  crypto.Provider

	blockMu        sync.RWMutex
	hasBlock       bool
	blockID        uint64
	height         int32
	blockTimestamp int32
	index          int32

	sigVerified atomic.Bool

	senderIDCell onceCell[uint64]
	idCell       onceCell[uint64]
	fullHashCell onceCell[[32]byte]
	stringIDCell onceCell[string]
	unsignedCell onceCell[[]byte]
}

// --- txctx.View implementation (consumed by appendage/txtype) ---

func (t *Transaction) Type() uint8    { return t.typ }
func (t *Transaction) Subtype() uint8 { return t.subtype }
func (t *Transaction) Version() uint8 { return t.version }

func (t *Transaction) Timestamp() int32      { return t.timestamp }
func (t *Transaction) Deadline() int16       { return t.deadline }
func (t *Transaction) ExpirationTime() int32 { return t.timestamp + int32(t.deadline)*60 }

func (t *Transaction) SenderPublicKey() [32]byte { return t.senderPublicKey }
func (t *Transaction) SenderID() uint64 {
	return t.senderIDCell.get(func() uint64 { return t.crypto.AccountID(t.senderPublicKey) })
}

func (t *Transaction) RecipientID() uint64 { return t.recipientID }
func (t *Transaction) AmountNQT() int64    { return t.amountNQT }
func (t *Transaction) FeeNQT() int64       { return t.feeNQT }

func (t *Transaction) Height() int32 {
	t.blockMu.RLock()
	defer t.blockMu.RUnlock()
	if !t.hasBlock {
		return -1
	}
	return t.height
}

func (t *Transaction) Signed() bool { return t.signature != nil }

// --- other exported getters ---

func (t *Transaction) EcBlockHeight() int32 { return t.ecBlockHeight }
func (t *Transaction) EcBlockID() uint64    { return t.ecBlockID }

func (t *Transaction) Attachment() txtype.Attachment { return t.attachment }
func (t *Transaction) Appendages() *appendage.Bag    { return t.appendages }
func (t *Transaction) Handler() txtype.Handler       { return t.handler }

// ReferencedTransactionFullHash returns the referenced hash and whether one
// is present.
func (t *Transaction) ReferencedTransactionFullHash() ([32]byte, bool) {
	if t.referencedTransactionFullHash == nil {
		return [32]byte{}, false
	}
	return *t.referencedTransactionFullHash, true
}

// Signature returns the signature and whether the transaction is signed.
func (t *Transaction) Signature() ([64]byte, bool) {
	if t.signature == nil {
		return [64]byte{}, false
	}
	return *t.signature, true
}

// Block returns the block id, height, timestamp, and index the transaction
// is currently attached to, and whether it is attached to any block.
func (t *Transaction) Block() (blockID uint64, height int32, blockTimestamp int32, index int32, attached bool) {
	t.blockMu.RLock()
	defer t.blockMu.RUnlock()
	return t.blockID, t.height, t.blockTimestamp, t.index, t.hasBlock
}

// SetBlock attaches the transaction to a block, called by the external
// storage layer at block inclusion. height is retained
// after a later ClearBlock so detached transactions can be tiebroken on
// reinclusion.
func (t *Transaction) SetBlock(blockID uint64, height int32, blockTimestamp int32, index int32) {
	t.blockMu.Lock()
	defer t.blockMu.Unlock()
	t.hasBlock = true
	t.blockID = blockID
	t.height = height
	t.blockTimestamp = blockTimestamp
	t.index = index
}

// ClearBlock detaches the transaction from its block on reorg; height is
// retained so detached transactions can be tiebroken on reinclusion.
func (t *Transaction) ClearBlock() {
	t.blockMu.Lock()
	defer t.blockMu.Unlock()
	t.hasBlock = false
	t.blockID = 0
	t.index = 0
}

// FullSize returns the transaction's encoded size including any
// out-of-band prunable payloads.
func (t *Transaction) FullSize() int {
	size := headerSize(t.version) + t.attachment.Size()
	if t.appendages != nil {
		for _, a := range t.appendages.Ordered() {
			size += a.FullSize()
		}
	}
	return size
}

// Size returns the transaction's on-wire encoded size, excluding any
// payload a prunable appendage carries out of band.
func (t *Transaction) Size() int {
	size := headerSize(t.version) + t.attachment.Size()
	if t.appendages != nil {
		for _, a := range t.appendages.Ordered() {
			size += a.Size()
		}
	}
	return size
}

func headerSize(version uint8) int {
	if version == 0 {
		return legacyHeaderSize
	}
	return headerSizeV1
}
