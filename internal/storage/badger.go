// ABOUTME: Embedded key-value snapshot store backed by badger.
// ABOUTME: Each session's snapshot is one JSON value under snapshot:<session>.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/cycles/internal/logger"
	"github.com/harperreed/cycles/internal/models"
)

// SnapshotKeyPrefix prefixes every snapshot key in the KV backends.
const SnapshotKeyPrefix = "snapshot:"

// SnapshotKey returns the KV key holding a session's snapshot.
func SnapshotKey(session string) string {
	if session == "" {
		session = "default"
	}
	return SnapshotKeyPrefix + session
}

// BadgerStore keeps snapshots in a local badger database.
type BadgerStore struct {
	db  *badger.DB
	key []byte
}

// OpenBadger opens or creates a badger database in dir for session.
func OpenBadger(dir, session string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	logger.Log.WithField("path", dir).Debug("opened badger store")
	return &BadgerStore{db: db, key: []byte(SnapshotKey(session))}, nil
}

// Load reads the session snapshot.
func (b *BadgerStore) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	snap.Normalize()
	return &snap, nil
}

// Save writes the session snapshot in one transaction.
func (b *BadgerStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key, data)
	}); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	logger.Log.WithField("key", string(b.key)).Debug("saved snapshot to badger")
	return nil
}

// Close closes the badger database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
