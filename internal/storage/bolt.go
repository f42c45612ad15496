package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	valuesBucket    = []byte("values")
	deadlinesBucket = []byte("deadlines")
	expiryBucket    = []byte("expiry")
)

const sweepInterval = time.Minute

// BoltStore is a single-file Store backed by bbolt. Expiring keys are
// tracked in a (deadline, key) index bucket; a background sweeper drops
// entries whose deadline has passed, and reads treat them as absent in
// the meantime.
type BoltStore struct {
	db   *bolt.DB
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

// NewBoltStore opens (or creates) the database file at path and starts
// the expiry sweeper.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{valuesBucket, deadlinesBucket, expiryBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create buckets: %w", err)
	}

	s := &BoltStore{
		db:   db,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	go s.sweepLoop()
	return s, nil
}

func (s *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		k := []byte(key)
		if s.deadlinePassed(tx, k) {
			return ErrKeyNotFound
		}
		v := tx.Bucket(valuesBucket).Get(k)
		if v == nil {
			return ErrKeyNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		k := []byte(key)
		if err := clearDeadline(tx, k); err != nil {
			return err
		}
		return tx.Bucket(valuesBucket).Put(k, value)
	})
}

func (s *BoltStore) SetWithExpiry(_ context.Context, key string, value []byte, ttl time.Duration) error {
	deadline := s.now().Add(ttl)
	return s.db.Update(func(tx *bolt.Tx) error {
		k := []byte(key)
		if err := clearDeadline(tx, k); err != nil {
			return err
		}
		if err := tx.Bucket(valuesBucket).Put(k, value); err != nil {
			return err
		}
		dl := encodeDeadline(deadline)
		if err := tx.Bucket(deadlinesBucket).Put(k, dl); err != nil {
			return err
		}
		return tx.Bucket(expiryBucket).Put(expiryKey(dl, k), nil)
	})
}

func (s *BoltStore) CompareAndSet(_ context.Context, key string, expected, replacement []byte) (bool, error) {
	var swapped bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		k := []byte(key)
		if s.deadlinePassed(tx, k) {
			return nil
		}
		cur := tx.Bucket(valuesBucket).Get(k)
		if cur == nil || !bytes.Equal(cur, expected) {
			return nil
		}
		if err := tx.Bucket(valuesBucket).Put(k, replacement); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	return swapped, err
}

func (s *BoltStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		k := []byte(key)
		if err := clearDeadline(tx, k); err != nil {
			return err
		}
		return tx.Bucket(valuesBucket).Delete(k)
	})
}

func (s *BoltStore) Ping(_ context.Context) error {
	return s.db.View(func(*bolt.Tx) error { return nil })
}

// Close stops the sweeper and closes the database file.
func (s *BoltStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return s.db.Close()
}

// SweepExpired removes every key whose deadline lies at or before now
// and reports how many were dropped.
func (s *BoltStore) SweepExpired(now time.Time) (int, error) {
	cutoff := encodeDeadline(now)
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(expiryBucket).Cursor()
		for ik, _ := c.First(); ik != nil && bytes.Compare(ik[:8], cutoff) <= 0; ik, _ = c.Next() {
			k := append([]byte(nil), ik[8:]...)
			if err := c.Delete(); err != nil {
				return err
			}
			if err := tx.Bucket(deadlinesBucket).Delete(k); err != nil {
				return err
			}
			if err := tx.Bucket(valuesBucket).Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *BoltStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _ = s.SweepExpired(s.now())
		case <-s.stop:
			return
		}
	}
}

// deadlinePassed reports whether key carries a deadline that has already
// elapsed. Such keys are logically absent until the sweeper reclaims them.
func (s *BoltStore) deadlinePassed(tx *bolt.Tx, key []byte) bool {
	dl := tx.Bucket(deadlinesBucket).Get(key)
	if dl == nil {
		return false
	}
	return bytes.Compare(dl, encodeDeadline(s.now())) <= 0
}

func clearDeadline(tx *bolt.Tx, key []byte) error {
	dl := tx.Bucket(deadlinesBucket).Get(key)
	if dl == nil {
		return nil
	}
	if err := tx.Bucket(expiryBucket).Delete(expiryKey(dl, key)); err != nil {
		return err
	}
	return tx.Bucket(deadlinesBucket).Delete(key)
}

func encodeDeadline(t time.Time) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(t.UnixNano()))
	return b[:]
}

func expiryKey(deadline, key []byte) []byte {
	out := make([]byte, 0, len(deadline)+len(key))
	out = append(out, deadline...)
	return append(out, key...)
}
