package tx

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"testing"

	"qbrchain.dev/txengine/appendage"
	"qbrchain.dev/txengine/crypto"
	"qbrchain.dev/txengine/txtype"
)

func TestJSONMirror(t *testing.T) {
	provider := crypto.Std{}
	txn := mustBuild(t, newOrdinaryBuilder(provider).
		ReferencedTransactionFullHash([32]byte{0xAB, 0xCD}).
		Appendages(&appendage.Bag{Message: appendage.NewPlainMessage([]byte("hello"), true)}), testSecret)

	m := txn.JSON()

	if m["recipient"] != strconv.FormatUint(42, 10) {
		t.Fatalf("recipient: got %v", m["recipient"])
	}
	if m["ecBlockId"] != strconv.FormatUint(0xFEED, 10) {
		t.Fatalf("ecBlockId: got %v", m["ecBlockId"])
	}
	pub := txn.SenderPublicKey()
	if m["senderPublicKey"] != hex.EncodeToString(pub[:]) {
		t.Fatalf("senderPublicKey: got %v", m["senderPublicKey"])
	}
	ref, _ := txn.ReferencedTransactionFullHash()
	if m["referencedTransactionFullHash"] != hex.EncodeToString(ref[:]) {
		t.Fatalf("referencedTransactionFullHash: got %v", m["referencedTransactionFullHash"])
	}
	sig, _ := txn.Signature()
	if m["signature"] != hex.EncodeToString(sig[:]) {
		t.Fatalf("signature: got %v", m["signature"])
	}
	if m["version"] != uint8(1) {
		t.Fatalf("version: got %v", m["version"])
	}

	att, ok := m["attachment"].(map[string]any)
	if !ok {
		t.Fatalf("attachment is %T", m["attachment"])
	}
	if att["message"] != "hello" || att["messageIsText"] != true {
		t.Fatalf("merged message appendage missing: %v", att)
	}
}

func TestJSONOmitsAbsentOptionals(t *testing.T) {
	provider := crypto.Std{}
	txn := mustBuild(t, newOrdinaryBuilder(provider), "")

	m := txn.JSON()
	if _, present := m["signature"]; present {
		t.Fatal("unsigned transaction must omit signature")
	}
	if _, present := m["referencedTransactionFullHash"]; present {
		t.Fatal("absent referenced hash must be omitted")
	}
}

func TestJSONOmitsRecipientForForbiddenType(t *testing.T) {
	provider := crypto.Std{}
	pub := provider.PublicKey([]byte(testSecret))
	txn := mustBuild(t, NewBuilder(1, 5, 0, OneQBR, pub, provider).
		Timestamp(1000).
		Attachment(txtype.NewAccountInfoAttachment("alice", "a test account")), testSecret)

	m := txn.JSON()
	if _, present := m["recipient"]; present {
		t.Fatal("recipient must be omitted for a type that forbids one")
	}
	att := m["attachment"].(map[string]any)
	if att["name"] != "alice" {
		t.Fatalf("attachment name: got %v", att["name"])
	}
}

func TestMarshalJSONIsValidJSON(t *testing.T) {
	provider := crypto.Std{}
	txn := mustBuild(t, newOrdinaryBuilder(provider), testSecret)

	raw, err := json.Marshal(txn)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	// 64-bit ids travel as strings so JSON numbers never lose precision.
	if _, ok := decoded["recipient"].(string); !ok {
		t.Fatalf("recipient should be a JSON string, got %T", decoded["recipient"])
	}
	if _, ok := decoded["ecBlockId"].(string); !ok {
		t.Fatalf("ecBlockId should be a JSON string, got %T", decoded["ecBlockId"])
	}
}

func TestPrunableAttachmentsJSON(t *testing.T) {
	provider := crypto.Std{}
	pub := provider.PublicKey([]byte(testSecret))

	payload := []byte("prune me later")
	pm := appendage.NewPrunablePlainMessage(100, payload)
	pm.SetHash(provider.SHA256(payload))

	txn := mustBuild(t, NewBuilder(0, 0, 100, 2*OneQBR, pub, provider).
		Timestamp(1000).
		Recipient(42).
		Appendages(&appendage.Bag{PrunablePlainMessage: pm}), testSecret)

	side := txn.PrunableAttachmentsJSON()
	if side["message"] != string(payload) {
		t.Fatalf("side-channel payload missing: %v", side)
	}
	want := provider.SHA256(payload)
	if side["prunableMessageHash"] != hex.EncodeToString(want[:]) {
		t.Fatalf("side-channel hash mismatch: %v", side["prunableMessageHash"])
	}
}
