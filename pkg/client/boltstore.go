package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	defaultSessionBucket = "session"
	sessionKey           = "tokens"
)

// BoltStore persists the session in a BoltDB file so a CLI keeps its login
// across invocations.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBoltStore initializes the BoltDB file and ensures the bucket exists.
// The file is created with 0600 permissions since it holds bearer tokens.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	bucket := []byte(defaultSessionBucket)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, bucket: bucket}, nil
}

func (s *BoltStore) Load() (Tokens, error) {
	if s == nil || s.db == nil {
		return Tokens{}, bolt.ErrDatabaseNotOpen
	}
	var tokens Tokens
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(sessionKey))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &tokens)
	})
	return tokens, err
}

func (s *BoltStore) Save(t Tokens) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	t.SavedAt = time.Now().UTC()
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(sessionKey), payload)
	})
}

func (s *BoltStore) Clear() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(sessionKey))
	})
}

// Close closes the Bolt database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
