// Package facade defines the narrow, synchronous interfaces the
// transaction engine consumes but does not implement: account lookups,
// blockchain height/EC-block queries, account restrictions, and phasing
// poll resolution. The engine never imports a concrete
// implementation of these interfaces; tests use the reference
// implementations in internal/memaccount and internal/boltpool.
package facade

// Crypto is the cryptographic primitives facade: SHA-256,
// Curve25519 sign/verify, and public-key derivation. crypto.Std and any
// HSM-backed Provider satisfy this interface structurally.
type Crypto interface {
	SHA256(b []byte) [32]byte
	Sign(msg []byte, secret []byte) ([64]byte, error)
	Verify(sig [64]byte, msg []byte, pub [32]byte) bool
	PublicKey(secret []byte) [32]byte
}

// AccountRecord is the minimal external view of an account the engine
// needs: its id and public key, if any has been bound yet.
type AccountRecord struct {
	ID        uint64
	PublicKey [32]byte
	HasKey    bool
}

// Account is the account-lookup facade.
type Account interface {
	// GetPublicKey returns the public key bound to id, if any.
	GetPublicKey(id uint64) (pub [32]byte, ok bool)

	// GetID returns the account id for a public key, deriving it if the
	// account has not been seen before.
	GetID(pub [32]byte) uint64

	// SetOrVerify binds pub to id the first time it is seen, or confirms
	// that a previously bound key still matches. Returns false if id is
	// already bound to a different key.
	SetOrVerify(id uint64, pub [32]byte) bool

	// GetAccount returns the account record for id, if it exists.
	GetAccount(id uint64) (AccountRecord, bool)

	// AddOrGetAccount returns the account record for id, creating an
	// empty one if it does not yet exist.
	AddOrGetAccount(id uint64) AccountRecord
}

// Blockchain is the chain-state facade.
type Blockchain interface {
	// Height returns the current chain height.
	Height() int32

	// ECBlock resolves the economic-cluster block a transaction created
	// at timestamp should commit to.
	ECBlock(timestamp int32) (height int32, id uint64)

	// BlockIDAtHeight returns the id of the block actually at height, if
	// the chain has reached that height.
	BlockIDAtHeight(height int32) (id uint64, ok bool)
}

// AccountRestrictions is the account-restriction policy facade.
type AccountRestrictions interface {
	// CheckTransaction returns a non-nil error if tx is currently
	// forbidden by an account-level restriction (e.g. an asset-controlled
	// account policy). The transaction type is left generic (any) to
	// avoid an import cycle with package tx; implementations type-assert
	// to *tx.Transaction.
	CheckTransaction(t any) error
}

// Poll is the minimal view of a phasing poll the engine needs to decide
// whether a signed, phased transaction is being applied at finish.
type Poll struct {
	ID       uint64
	Finished bool
}

// PhasingPoll is the phasing-poll facade.
type PhasingPoll interface {
	GetPoll(id uint64) (Poll, bool)
}
