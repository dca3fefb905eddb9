package webhookpubsub

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const dbFile = "webhooks.db"

var (
	subsBucket        = []byte("subscriptions")
	subsByEventBucket = []byte("subscriptionsbyevent")

	// separator equivalent character is ÿ.
	// Should be fine to use such value since it's not used for Secret, nor for
	// Endpoint (http url).
	separator = []byte{255}
)

// store persists webhook subscriptions in a bbolt database. It implements the
// ports.PubSubStore interface.
type store struct {
	db *bbolt.DB
}

func newStore(datadir string) (*store, error) {
	if err := os.MkdirAll(datadir, os.ModeDir|0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(
		filepath.Join(datadir, dbFile), 0600,
		&bbolt.Options{Timeout: time.Second},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open webhook db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{subsBucket, subsByEventBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &store{db}, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) get(bucket, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucket).Get(key); v != nil {
			value = append([]byte{}, v...)
		}
		return nil
	})
	return value, err
}

func (s *store) getAll(bucket []byte) ([][]byte, error) {
	values := make([][]byte, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, v []byte) error {
			values = append(values, append([]byte{}, v...))
			return nil
		})
	})
	return values, err
}

func (s *store) put(bucket, key, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, value)
	})
}

func (s *store) remove(bucket, key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}

// update replaces the value at key with the one returned by fn, within a
// single transaction. A nil value removes the key.
func (s *store) update(
	bucket, key []byte, fn func(value []byte) ([]byte, error),
) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		var current []byte
		if v := b.Get(key); v != nil {
			current = append([]byte{}, v...)
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return b.Delete(key)
		}
		return b.Put(key, next)
	})
}
