// Package specstore implements the Spec Store (spec.md §4.H):
// content-addressed persistence of submitted specs, backed by a
// namespaced key-value Persister.
package specstore

import (
	"fmt"

	"go.etcd.io/bbolt"
)

// ErrNotFound is returned by Persister.Get when the key is absent.
var ErrNotFound = fmt.Errorf("NOT_FOUND")

// Persister is the namespaced key-value boundary the Spec Store is
// built on. Namespaces are slash-joined paths (e.g. "Specs/<specId>"),
// each holding plain keys; BatchGet/BatchPut let callers read or write
// several keys of one namespace in one call, matching the
// store/recover operations' "one batched call" wording.
type Persister interface {
	Get(namespace, key string) ([]byte, error)
	BatchGet(namespace string, keys []string) (map[string][]byte, error)
	BatchPut(namespace string, values map[string][]byte) error
	// Namespaces lists every existing namespace whose name starts with
	// prefix, including one created by a BatchPut with no values.
	Namespaces(prefix string) ([]string, error)
}

// BoltPersister is a Persister backed by an embedded bbolt database.
// Each namespace is a top-level bucket; keys within it are plain
// byte-string keys.
type BoltPersister struct {
	db *bbolt.DB
}

// OpenBoltPersister opens (creating if necessary) a bbolt database at path.
func OpenBoltPersister(path string) (*BoltPersister, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	return &BoltPersister{db: db}, nil
}

// Close releases the underlying database file.
func (p *BoltPersister) Close() error { return p.db.Close() }

// DB exposes the underlying bbolt database so other storage needs
// (e.g. resourcemanager.BoltFrameworkInfoStore) can share one open
// file instead of locking a second one.
func (p *BoltPersister) DB() *bbolt.DB { return p.db }

func (p *BoltPersister) Get(namespace, key string) ([]byte, error) {
	var out []byte
	err := p.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

func (p *BoltPersister) BatchGet(namespace string, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	err := p.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return nil
		}
		for _, k := range keys {
			if v := b.Get([]byte(k)); v != nil {
				out[k] = append([]byte(nil), v...)
			}
		}
		return nil
	})
	return out, err
}

func (p *BoltPersister) BatchPut(namespace string, values map[string][]byte) error {
	return p.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		for k, v := range values {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *BoltPersister) Namespaces(prefix string) ([]string, error) {
	var out []string
	err := p.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			n := string(name)
			if len(n) >= len(prefix) && n[:len(prefix)] == prefix {
				out = append(out, n)
			}
			return nil
		})
	})
	return out, err
}
