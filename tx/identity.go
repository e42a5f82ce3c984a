package tx

import (
	"strconv"

	"qbrchain.dev/txengine/facade"
)

// Identity derivation. id and fullHash are defined only once a
// transaction is signed; reading them before signing is
// a programmer error, surfaced as IllegalState rather than a zero value,
// so a caller cannot silently treat an unsigned transaction's id as valid.

// FullHash returns the transaction's 32-byte full hash, the canonical
// digest of its unsigned bytes and the hash of its signature.
func (t *Transaction) FullHash() ([32]byte, error) {
	if !t.Signed() {
		return [32]byte{}, illegalState("UNSIGNED", "fullHash is undefined on an unsigned transaction")
	}
	return t.fullHashCell.get(func() [32]byte { return t.computeFullHash() }), nil
}

// ID returns the transaction's 64-bit id: the leading 8 bytes of FullHash,
// little-endian.
func (t *Transaction) ID() (uint64, error) {
	if !t.Signed() {
		return 0, illegalState("UNSIGNED", "id is undefined on an unsigned transaction")
	}
	return t.idCell.get(func() uint64 {
		h := t.fullHashCell.get(func() [32]byte { return t.computeFullHash() })
		return leU64(h[:8])
	}), nil
}

// StringID returns ID formatted as an unsigned decimal string, the form
// used on the wire and in JSON.
func (t *Transaction) StringID() (string, error) {
	if !t.Signed() {
		return "", illegalState("UNSIGNED", "stringId is undefined on an unsigned transaction")
	}
	return t.stringIDCell.get(func() string {
		id, _ := t.ID()
		return strconv.FormatUint(id, 10)
	}), nil
}

func (t *Transaction) computeFullHash() [32]byte {
	data := t.UnsignedBytes()
	sig := *t.signature
	sigHash := t.crypto.SHA256(sig[:])
	combined := make([]byte, 0, len(data)+len(sigHash))
	combined = append(combined, data...)
	combined = append(combined, sigHash[:]...)
	return t.crypto.SHA256(combined)
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// VerifySignature verifies t's Curve25519 signature over its unsigned
// bytes against senderPublicKey. The result is cached after the first
// success, so repeated checks (mempool readmission, block revalidation)
// do not redo the curve arithmetic. It does not consult any account
// facade; use VerifySignatureAndBind when the sender's key must also be
// bound to its account id.
func (t *Transaction) VerifySignature() bool {
	if t.sigVerified.Load() {
		return true
	}
	if !t.Signed() {
		return false
	}
	ok := t.crypto.Verify(*t.signature, t.UnsignedBytes(), t.senderPublicKey)
	if ok {
		t.sigVerified.Store(true)
	}
	return ok
}

// VerifySignatureAndBind verifies the signature and binds senderPublicKey
// to senderId through the account facade: the first sighting of an
// account sets its key, any later sighting must match it.
func (t *Transaction) VerifySignatureAndBind(accounts facade.Account) bool {
	if !t.VerifySignature() {
		return false
	}
	return accounts.SetOrVerify(t.SenderID(), t.senderPublicKey)
}
