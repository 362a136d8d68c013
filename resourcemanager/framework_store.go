package resourcemanager

import "go.etcd.io/bbolt"

const (
	frameworkBucket = "Framework"
	frameworkIDKey  = "FrameworkID"
)

// BoltFrameworkInfoStore is a FrameworkInfoStore backed by the same
// embedded bbolt database the Spec Store persists specs in.
type BoltFrameworkInfoStore struct {
	db *bbolt.DB
}

// NewBoltFrameworkInfoStore wraps an already-open bbolt database.
func NewBoltFrameworkInfoStore(db *bbolt.DB) *BoltFrameworkInfoStore {
	return &BoltFrameworkInfoStore{db: db}
}

func (s *BoltFrameworkInfoStore) FrameworkID() (string, bool, error) {
	var id string
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(frameworkBucket))
		if b == nil {
			return nil
		}
		v := b.Get([]byte(frameworkIDKey))
		if v != nil {
			id = string(v)
			found = true
		}
		return nil
	})
	return id, found, err
}

func (s *BoltFrameworkInfoStore) SetFrameworkID(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(frameworkBucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(frameworkIDKey), []byte(id))
	})
}
