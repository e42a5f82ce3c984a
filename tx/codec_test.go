package tx

import (
	"bytes"
	"testing"

	"qbrchain.dev/txengine/appendage"
	"qbrchain.dev/txengine/crypto"
	_ "qbrchain.dev/txengine/txtype"
)

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	provider := crypto.Std{}
	txn := mustBuild(t, newOrdinaryBuilder(provider), testSecret)

	padded := append(append([]byte(nil), txn.Bytes()...), 0x00)
	_, err := Decode(padded, provider)
	if kind, ok := KindOf(err); !ok || kind != NotValid {
		t.Fatalf("expected NotValid for trailing byte, got %v", err)
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	provider := crypto.Std{}
	txn := mustBuild(t, newOrdinaryBuilder(provider), testSecret)

	corrupt := append([]byte(nil), txn.Bytes()...)
	corrupt[0] = 0xFF
	_, err := Decode(corrupt, provider)
	if kind, ok := KindOf(err); !ok || kind != NotValid {
		t.Fatalf("expected NotValid for unknown type/subtype, got %v", err)
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	provider := crypto.Std{}
	txn := mustBuild(t, newOrdinaryBuilder(provider), testSecret)

	for cut := 0; cut < 10; cut++ {
		_, err := Decode(txn.Bytes()[:cut], provider)
		if err == nil {
			t.Fatalf("expected error decoding %d truncated bytes", cut)
		}
	}
}

func TestUnsignedBytesZerosSignature(t *testing.T) {
	provider := crypto.Std{}
	txn := mustBuild(t, newOrdinaryBuilder(provider), testSecret)

	unsigned := txn.UnsignedBytes()
	full := txn.Bytes()
	if bytes.Equal(unsigned, full) {
		t.Fatal("unsigned bytes must differ from signed bytes")
	}
	if len(unsigned) != len(full) {
		t.Fatalf("unsigned/signed length mismatch: %d vs %d", len(unsigned), len(full))
	}
}

func TestDecodeLegacyV0ArbitraryMessage(t *testing.T) {
	provider := crypto.Std{}
	pub := provider.PublicKey([]byte(testSecret))

	// Version 0: no flags/EC fields on the wire; an arbitrary-message
	// transaction carries an implicit plain message after the signature.
	b := NewBuilder(1, 0, 0, OneQBR, pub, provider).
		Version(0).
		Timestamp(1000).
		Recipient(42).
		Appendages(&appendage.Bag{Message: appendage.NewPlainMessage([]byte("legacy"), true)})
	txn := mustBuild(t, b, testSecret)

	if len(txn.Bytes()) != 160+txn.Appendages().Message.Size() {
		t.Fatalf("v0 layout size: got %d", len(txn.Bytes()))
	}

	decoded, err := Decode(txn.Bytes(), provider)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rebuilt, err := decoded.Build(nil)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuilt.Version() != 0 {
		t.Fatalf("version: %d", rebuilt.Version())
	}
	if rebuilt.Appendages() == nil || rebuilt.Appendages().Message == nil {
		t.Fatal("legacy message appendage missing")
	}
	if string(rebuilt.Appendages().Message.Data) != "legacy" {
		t.Fatalf("legacy message payload: %q", rebuilt.Appendages().Message.Data)
	}
	if string(rebuilt.Bytes()) != string(txn.Bytes()) {
		t.Fatal("v0 re-encode differs")
	}
}

func TestDecodeAbsentOptionalsStayAbsent(t *testing.T) {
	provider := crypto.Std{}
	txn := mustBuild(t, newOrdinaryBuilder(provider), "")

	decoded, err := Decode(txn.Bytes(), provider)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rebuilt, err := decoded.Build(nil)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuilt.Signed() {
		t.Fatal("zeroed signature must decode as absent")
	}
	if _, present := rebuilt.ReferencedTransactionFullHash(); present {
		t.Fatal("zeroed referenced hash must decode as absent")
	}
}

func TestDecodeRoundTripsAppendageFlags(t *testing.T) {
	provider := crypto.Std{}
	pub := provider.PublicKey([]byte(testSecret))
	b := NewBuilder(0, 0, 100, 1, pub, provider).
		Timestamp(1000).
		Recipient(42).
		Appendages(&appendage.Bag{Message: appendage.NewPlainMessage([]byte("hi"), true)})
	txn := mustBuild(t, b, testSecret)

	decodedBuilder, err := Decode(txn.Bytes(), provider)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	decoded, err := decodedBuilder.Build(nil)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if decoded.Appendages() == nil || decoded.Appendages().Message == nil {
		t.Fatal("expected decoded plain message appendage")
	}
	if string(decoded.Appendages().Message.Data) != "hi" {
		t.Fatalf("unexpected decoded message text: %q", decoded.Appendages().Message.Data)
	}
}
