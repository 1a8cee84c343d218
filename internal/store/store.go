// Package store persists client state in an embedded Badger database.
// It is the single durable layer behind sessions, favorites, currency
// caches and UI preferences.
package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// AEAD used to seal session values at rest. Everything else is
	// stored as plain JSON.
	sealer cipher.AEAD
}

// New creates a new Store at the given database path. sealKey must be a
// 32-byte key; session values are encrypted with it before hitting disk.
func New(path string, sealKey []byte, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	block, err := aes.NewCipher(sealKey)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("invalid seal key: %w", err)
	}
	sealer, err := cipher.NewGCM(block)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create AEAD: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
		sealer: sealer,
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Helper methods for database operations.

// get retrieves a JSON value by key. Returns false when the key is absent.
func (s *Store) get(key string, dest any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// set stores a JSON value by key.
func (s *Store) set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// delete removes a key from the database. Missing keys are not an error.
func (s *Store) delete(keys ...string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

// getSealed retrieves and decrypts a sealed JSON value by key.
func (s *Store) getSealed(key string, dest any) (bool, error) {
	var sealed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		sealed, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	nonceSize := s.sealer.NonceSize()
	if len(sealed) < nonceSize {
		return false, fmt.Errorf("sealed value for %q is truncated", key)
	}

	plain, err := s.sealer.Open(nil, sealed[:nonceSize], sealed[nonceSize:], []byte(key))
	if err != nil {
		return false, fmt.Errorf("failed to unseal %q: %w", key, err)
	}

	if err := json.Unmarshal(plain, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %q: %w", key, err)
	}
	return true, nil
}

// setSealed encrypts and stores a JSON value by key. The key itself is bound
// as additional data, so a sealed value cannot be replayed under another key.
func (s *Store) setSealed(key string, value any) error {
	plain, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	nonce := make([]byte, s.sealer.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.sealer.Seal(nonce, nonce, plain, []byte(key))

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), sealed)
	})
}
