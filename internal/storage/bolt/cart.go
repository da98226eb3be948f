// Package bolt implements durable per-session storage on an embedded bbolt
// database file.
package bolt

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"

	"github.com/dkpi/kefir-shop/internal/cart"
)

var _ cart.Store = (*CartStore)(nil)

// cartBucket is the fixed bucket holding serialized cart lines keyed by
// session ID.
var cartBucket = []byte("carts")

// CartStore persists serialized carts in a bbolt database.
type CartStore struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the database file at path and ensures
// the cart bucket exists.
func Open(path string) (*CartStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt database %q", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cartBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create cart bucket")
	}

	return &CartStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *CartStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is readable, for the readiness probe.
func (s *CartStore) Ping(_ context.Context) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(cartBucket) == nil {
			return errors.New("cart bucket missing")
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "ping cart store")
	}
	return nil
}

// Load returns the serialized cart for the session, or (nil, nil) when none
// has been saved yet.
func (s *CartStore) Load(_ context.Context, sessionID string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(cartBucket).Get([]byte(sessionID))
		if v != nil {
			out = make([]byte, len(v))
			copy(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return out, nil
}

// Save writes the serialized cart for the session.
func (s *CartStore) Save(_ context.Context, sessionID string, data []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cartBucket).Put([]byte(sessionID), data)
	})
	if err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

// Delete removes the session's persisted cart. Deleting an absent session is
// not an error.
func (s *CartStore) Delete(_ context.Context, sessionID string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cartBucket).Delete([]byte(sessionID))
	})
	if err != nil {
		return errors.Wrap(err, "delete cart")
	}
	return nil
}
