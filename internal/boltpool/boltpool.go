// Package boltpool is a bbolt-backed reference implementation of the
// unconfirmed-pool, prunable-payload, and duplicate-detection-budget
// contracts the transaction engine consumes but does not implement. It
// is exercised only by this package's tests (the cmd/ tools do not use
// it), and is not a production database layout.
package boltpool

import (
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketUnconfirmed = []byte("unconfirmed_by_id")
	bucketPrunable    = []byte("prunable_by_hash")
	bucketBudget      = []byte("duplicate_budget")
)

// Pool is a bbolt-backed unconfirmed-transaction pool, prunable-payload
// store, and duplicate-detection budget, all in one file.
type Pool struct {
	db *bolt.DB
}

// Open opens (creating if absent) a bbolt database at path with the
// buckets this package needs.
func Open(path string) (*Pool, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltpool: open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketUnconfirmed, bucketPrunable, bucketBudget} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltpool: init buckets: %w", err)
	}
	return &Pool{db: db}, nil
}

// Close closes the underlying database.
func (p *Pool) Close() error { return p.db.Close() }

func idKey(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

// PutUnconfirmed stores raw wire bytes for an unconfirmed transaction id.
func (p *Pool) PutUnconfirmed(id uint64, raw []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnconfirmed).Put(idKey(id), raw)
	})
}

// GetUnconfirmed retrieves the raw wire bytes for id, if present.
func (p *Pool) GetUnconfirmed(id uint64) ([]byte, bool, error) {
	var out []byte
	err := p.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketUnconfirmed).Get(idKey(id))
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, out != nil, err
}

// DeleteUnconfirmed removes id from the pool (e.g. on confirmation or
// expiry).
func (p *Pool) DeleteUnconfirmed(id uint64) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnconfirmed).Delete(idKey(id))
	})
}

// AllUnconfirmed returns every unconfirmed transaction's raw bytes keyed
// by id.
func (p *Pool) AllUnconfirmed() (map[uint64][]byte, error) {
	out := make(map[uint64][]byte)
	err := p.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUnconfirmed).ForEach(func(k, v []byte) error {
			out[binary.BigEndian.Uint64(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	return out, err
}

// PutPrunablePayload stores a prunable appendage's payload under its
// content hash.
func (p *Pool) PutPrunablePayload(hash [32]byte, data []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPrunable).Put(hash[:], data)
	})
}

// LoadPrunablePayload implements the loader contract appendage.SetLoader
// expects: rehydrate a prunable payload by its content hash.
// includeExpired is accepted for interface compatibility; this reference
// store never expires payloads.
func (p *Pool) LoadPrunablePayload(hash [32]byte, _ bool) ([]byte, bool) {
	var out []byte
	_ = p.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketPrunable).Get(hash[:])
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, out != nil
}

// Use implements txtype.Budget: a persistent per-key use counter, reset by
// calling ResetBudget at block boundaries (the per-block dedup window).
func (p *Pool) Use(key string) bool {
	exceeded := false
	_ = p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBudget)
		v := b.Get([]byte(key))
		count := uint32(0)
		if v != nil {
			count = binary.BigEndian.Uint32(v)
		}
		count++
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], count)
		exceeded = count > 1
		return b.Put([]byte(key), buf[:])
	})
	return exceeded
}

// ResetBudget clears every recorded duplicate-budget key, called at each
// new block boundary.
func (p *Pool) ResetBudget() error {
	return p.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketBudget); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketBudget)
		return err
	})
}
