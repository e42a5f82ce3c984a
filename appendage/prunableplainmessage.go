package appendage

import (
	"sync"

	"qbrchain.dev/txengine/txctx"
	"qbrchain.dev/txengine/wire"
)

// PrunablePlainMessage is a plain-message appendage whose payload may be
// elided from long-term storage; only its content hash is consensus
// critical.
type PrunablePlainMessage struct {
	version   uint8
	Timestamp int32
	hash      [32]byte
	data      []byte // nil when pruned
	hasHash   bool
}

// NewPrunablePlainMessage builds a hydrated PrunablePlainMessage carrying
// data directly. It records no content hash: the caller computes one
// (e.g. SHA-256 over data) and sets it via SetHash. Neither the builder
// nor the codec does so, and Validate rejects the appendage without it.
func NewPrunablePlainMessage(timestamp int32, data []byte) *PrunablePlainMessage {
	return &PrunablePlainMessage{version: 1, Timestamp: timestamp, data: data}
}

// SetHash records the content hash for data, computed by the caller.
func (m *PrunablePlainMessage) SetHash(h [32]byte) {
	m.hash = h
	m.hasHash = true
}

func (m *PrunablePlainMessage) Hash() [32]byte { return m.hash }
func (m *PrunablePlainMessage) IsPruned() bool { return m.data == nil }
func (m *PrunablePlainMessage) Version() uint8 { return m.version }

// Size is the on-chain footprint: version + timestamp + hash, regardless
// of whether the payload itself is present in memory.
func (m *PrunablePlainMessage) Size() int { return 1 + 4 + 32 }

// FullSize additionally counts the out-of-band payload when hydrated.
func (m *PrunablePlainMessage) FullSize() int { return m.Size() + len(m.data) }

func (m *PrunablePlainMessage) Emit(dst []byte) []byte {
	dst = append(dst, m.version)
	dst = wire.AppendI32LE(dst, m.Timestamp)
	dst = append(dst, m.hash[:]...)
	return dst
}

// ParsePrunablePlainMessage reads the on-chain stub (version, timestamp,
// hash) from cur. The payload itself, if retained, arrives separately via
// LoadPrunable.
func ParsePrunablePlainMessage(cur *wire.Cursor) (*PrunablePlainMessage, error) {
	v, err := cur.ReadU8()
	if err != nil {
		return nil, err
	}
	ts, err := cur.ReadI32LE()
	if err != nil {
		return nil, err
	}
	hashBytes, err := cur.ReadExact(32)
	if err != nil {
		return nil, err
	}
	m := &PrunablePlainMessage{version: v, Timestamp: ts, hasHash: true}
	copy(m.hash[:], hashBytes)
	return m, nil
}

func (m *PrunablePlainMessage) JSON() map[string]any {
	out := map[string]any{
		"prunableMessageHash": hexString(m.hash[:]),
		"timestamp":           m.Timestamp,
	}
	if m.data != nil {
		out["message"] = string(m.data)
	}
	return out
}

func (m *PrunablePlainMessage) Validate(txctx.View) error {
	if !m.hasHash {
		return errAppendage("prunable plain message: missing hash")
	}
	if m.data != nil && len(m.data) > MaxMessageLength {
		return errAppendage("prunable plain message too long")
	}
	return nil
}

func (m *PrunablePlainMessage) ValidateAtFinish(v txctx.View) error { return m.Validate(v) }

func (m *PrunablePlainMessage) Apply(txctx.View, *txctx.Account, *txctx.Account) {}

func (m *PrunablePlainMessage) BaselineFee() int64       { return OneQBR / 20 }
func (m *PrunablePlainMessage) NextFee() int64           { return OneQBR / 20 }
func (m *PrunablePlainMessage) BaselineFeeHeight() int32 { return 0 }
func (m *PrunablePlainMessage) NextFeeHeight() int32     { return 0 }

// loader is the narrow side-channel contract LoadPrunable rehydrates from;
// a store implementation (e.g. internal/boltpool) looks up payloads by
// their content hash.
type loader interface {
	LoadPrunablePayload(hash [32]byte, includeExpired bool) ([]byte, bool)
}

var (
	loaderMu     sync.RWMutex
	activeLoader loader
)

// SetLoader installs the side-channel payload source used by LoadPrunable.
// In this repository only tests call it; the validator never calls it
// itself, since rehydration is a storage-layer concern.
func SetLoader(l loader) {
	loaderMu.Lock()
	defer loaderMu.Unlock()
	activeLoader = l
}

func (m *PrunablePlainMessage) LoadPrunable(v txctx.View, includeExpired bool) error {
	loaderMu.RLock()
	l := activeLoader
	loaderMu.RUnlock()
	if l == nil {
		return errAppendage("prunable plain message: no loader installed")
	}
	data, ok := l.LoadPrunablePayload(m.hash, includeExpired)
	if !ok {
		return errAppendage("prunable plain message: payload not available")
	}
	m.data = data
	return nil
}

// Data returns the hydrated payload, or nil if pruned.
func (m *PrunablePlainMessage) Data() []byte { return m.data }
