package appendage

import (
	"bytes"
	"testing"

	"qbrchain.dev/txengine/wire"
)

// viewStub satisfies txctx.View with fixed values for appendage-level
// validation tests.
type viewStub struct {
	recipient uint64
	height    int32
}

func (v viewStub) Type() uint8                { return 0 }
func (v viewStub) Subtype() uint8             { return 0 }
func (v viewStub) Version() uint8             { return 1 }
func (v viewStub) Timestamp() int32           { return 1000 }
func (v viewStub) SenderID() uint64           { return 7 }
func (v viewStub) SenderPublicKey() [32]byte  { return [32]byte{1} }
func (v viewStub) RecipientID() uint64        { return v.recipient }
func (v viewStub) AmountNQT() int64           { return 0 }
func (v viewStub) FeeNQT() int64              { return 0 }
func (v viewStub) Height() int32              { return v.height }
func (v viewStub) Signed() bool               { return true }

func roundTrip(t *testing.T, a Appendage, parse func(*wire.Cursor) (Appendage, error)) Appendage {
	t.Helper()
	raw := a.Emit(nil)
	if len(raw) != a.Size() {
		t.Fatalf("emitted %d bytes but Size() says %d", len(raw), a.Size())
	}
	cur := wire.NewCursor(raw)
	got, err := parse(cur)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cur.Remaining() != 0 {
		t.Fatalf("parse left %d bytes unread", cur.Remaining())
	}
	if !bytes.Equal(got.Emit(nil), raw) {
		t.Fatal("re-emit differs from original bytes")
	}
	return got
}

func TestPlainMessageRoundTrip(t *testing.T) {
	m := NewPlainMessage([]byte("hello world"), true)
	got := roundTrip(t, m, func(c *wire.Cursor) (Appendage, error) { return ParsePlainMessage(c) })
	pm := got.(*PlainMessage)
	if !pm.IsText || string(pm.Data) != "hello world" {
		t.Fatalf("fields lost in round trip: %+v", pm)
	}
}

func TestPlainMessageTooLong(t *testing.T) {
	m := NewPlainMessage(make([]byte, MaxMessageLength+1), false)
	if err := m.Validate(viewStub{}); err == nil {
		t.Fatal("expected over-length message to fail validation")
	}
}

func TestPublicKeyAnnouncementRoundTripAndRules(t *testing.T) {
	var pub [32]byte
	pub[0] = 0xAB
	a := NewPublicKeyAnnouncement(pub)
	got := roundTrip(t, a, func(c *wire.Cursor) (Appendage, error) { return ParsePublicKeyAnnouncement(c) })
	if got.(*PublicKeyAnnouncement).PublicKey != pub {
		t.Fatal("public key lost in round trip")
	}

	if err := a.Validate(viewStub{recipient: 42}); err != nil {
		t.Fatalf("valid announcement rejected: %v", err)
	}
	if err := a.Validate(viewStub{recipient: 0}); err == nil {
		t.Fatal("announcement without recipient must fail")
	}
	if err := NewPublicKeyAnnouncement([32]byte{}).Validate(viewStub{recipient: 42}); err == nil {
		t.Fatal("zero announced key must fail")
	}
}

func TestPhasingRoundTrip(t *testing.T) {
	p := NewPhasing(500, VotingModelBalance, 3, 1_000_000, []uint64{11, 22, 33})
	got := roundTrip(t, p, func(c *wire.Cursor) (Appendage, error) { return ParsePhasing(c) })
	ph := got.(*Phasing)
	if ph.FinishHeight != 500 || ph.VotingModel != VotingModelBalance || ph.Quorum != 3 ||
		ph.MinBalance != 1_000_000 || len(ph.Whitelist) != 3 || ph.Whitelist[2] != 33 {
		t.Fatalf("phasing fields lost: %+v", ph)
	}
}

func TestPhasingValidation(t *testing.T) {
	p := NewPhasing(500, VotingModelAccount, 1, 0, nil)
	if err := p.Validate(viewStub{height: 100}); err != nil {
		t.Fatalf("future finish height rejected: %v", err)
	}
	if err := p.Validate(viewStub{height: 600}); err == nil {
		t.Fatal("passed finish height must fail in admission mode")
	}
	if err := p.ValidateAtFinish(viewStub{height: 600}); err != nil {
		t.Fatalf("atFinish must not re-check finish height: %v", err)
	}
	bad := NewPhasing(500, 9, 1, 0, nil)
	if err := bad.Validate(viewStub{height: 100}); err == nil {
		t.Fatal("unknown voting model must fail")
	}
}

func TestEncryptedMessageRequiresEncryption(t *testing.T) {
	m := NewEncryptedMessage([]byte("secret"), true)
	if err := m.Validate(viewStub{}); err == nil {
		t.Fatal("unencrypted payload must fail validation")
	}
	if m.Encrypted() {
		t.Fatal("fresh appendage must not report encrypted")
	}
	if err := m.Encrypt([]byte("sender secret"), [32]byte{}); err == nil {
		t.Fatal("zero recipient key must be refused")
	}

	var recipientPub [32]byte
	recipientPub[5] = 9
	if err := m.Encrypt([]byte("sender secret"), recipientPub); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !m.Encrypted() {
		t.Fatal("Encrypt must mark the appendage encrypted")
	}
	if err := m.Validate(viewStub{}); err != nil {
		t.Fatalf("encrypted payload rejected: %v", err)
	}

	got := roundTrip(t, m, func(c *wire.Cursor) (Appendage, error) { return ParseEncryptedMessage(c) })
	if !bytes.Equal(got.(*EncryptedMessage).Ciphertext(), m.Ciphertext()) {
		t.Fatal("ciphertext lost in round trip")
	}
}

func TestPrunablePlainMessageStubAndLoader(t *testing.T) {
	payload := []byte("payload kept off-chain")
	m := NewPrunablePlainMessage(777, payload)
	var hash [32]byte
	hash[0] = 0xCC
	m.SetHash(hash)

	got := roundTrip(t, m, func(c *wire.Cursor) (Appendage, error) { return ParsePrunablePlainMessage(c) })
	parsed := got.(*PrunablePlainMessage)
	if !parsed.IsPruned() {
		t.Fatal("wire stub must parse as pruned")
	}
	if parsed.Hash() != hash {
		t.Fatal("hash lost in round trip")
	}
	if parsed.FullSize() != parsed.Size() {
		t.Fatal("pruned FullSize must equal Size")
	}

	SetLoader(mapLoader{hash: payload})
	defer SetLoader(nil)
	if err := parsed.LoadPrunable(viewStub{}, false); err != nil {
		t.Fatalf("LoadPrunable: %v", err)
	}
	if parsed.IsPruned() || !bytes.Equal(parsed.Data(), payload) {
		t.Fatal("rehydration failed")
	}
	if parsed.FullSize() != parsed.Size()+len(payload) {
		t.Fatal("hydrated FullSize must include the payload")
	}
}

type mapLoader map[[32]byte][]byte

func (l mapLoader) LoadPrunablePayload(hash [32]byte, _ bool) ([]byte, bool) {
	v, ok := l[hash]
	return v, ok
}

func TestBagFlagsMatchPresence(t *testing.T) {
	b := &Bag{
		Message: NewPlainMessage([]byte("m"), true),
		Phasing: NewPhasing(100, VotingModelNone, 0, 0, nil),
	}
	if b.Flags() != FlagMessage|FlagPhasing {
		t.Fatalf("flags: got %#x", b.Flags())
	}

	ordered := b.Ordered()
	if len(ordered) != 2 {
		t.Fatalf("expected 2 appendages, got %d", len(ordered))
	}
	if _, ok := ordered[0].(*PlainMessage); !ok {
		t.Fatalf("lowest bit must come first, got %T", ordered[0])
	}
	if _, ok := ordered[1].(*Phasing); !ok {
		t.Fatalf("phasing must come second, got %T", ordered[1])
	}
}

func TestParseBagHonorsFlagOrder(t *testing.T) {
	b := &Bag{
		Message:               NewPlainMessage([]byte("hi"), true),
		PublicKeyAnnouncement: NewPublicKeyAnnouncement([32]byte{1, 2, 3}),
	}
	raw := b.Emit(nil)
	if len(raw) != b.Size() {
		t.Fatalf("emitted %d bytes, Size says %d", len(raw), b.Size())
	}

	cur := wire.NewCursor(raw)
	got, err := ParseBag(cur, b.Flags())
	if err != nil {
		t.Fatalf("ParseBag: %v", err)
	}
	if cur.Remaining() != 0 {
		t.Fatalf("%d bytes left after ParseBag", cur.Remaining())
	}
	if got.Message == nil || got.PublicKeyAnnouncement == nil {
		t.Fatal("appendages missing after parse")
	}
	if got.EncryptedMessage != nil || got.Phasing != nil {
		t.Fatal("unset flags must stay absent")
	}
	if string(got.Message.Data) != "hi" {
		t.Fatalf("message payload: %q", got.Message.Data)
	}
}

func TestParseBagTruncated(t *testing.T) {
	b := &Bag{Message: NewPlainMessage([]byte("hello"), true)}
	raw := b.Emit(nil)
	_, err := ParseBag(wire.NewCursor(raw[:2]), b.Flags())
	if err == nil {
		t.Fatal("truncated bag must fail to parse")
	}
}

func TestEncryptToSelfIgnoresRecipientKey(t *testing.T) {
	m := NewEncryptToSelfMessage([]byte("note to self"), true)
	if err := m.Encrypt([]byte("my secret"), [32]byte{}); err != nil {
		t.Fatalf("encrypt-to-self must not need a recipient key: %v", err)
	}
	if !m.Encrypted() {
		t.Fatal("expected encrypted state")
	}
	got := roundTrip(t, m, func(c *wire.Cursor) (Appendage, error) { return ParseEncryptToSelfMessage(c) })
	if !bytes.Equal(got.(*EncryptToSelfMessage).Ciphertext(), m.Ciphertext()) {
		t.Fatal("ciphertext lost in round trip")
	}
}
