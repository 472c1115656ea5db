// ABOUTME: Charm KV client wrapper for syncing the tracking snapshot.
// ABOUTME: Provides thread-safe initialization and automatic cloud sync.
package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/cycles/internal/logger"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/storage"
)

const (
	dbName    = "cycles"
	charmHost = "charm.2389.dev"
)

// ErrReadOnly is returned on writes while another process holds the KV lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// kvStore is the subset of the Charm KV API the client uses.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Sync() error
	Reset() error
	IsReadOnly() bool
	Close() error
}

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// Client stores one session's snapshot in Charm KV. It implements storage.Store.
type Client struct {
	kv       kvStore
	key      []byte
	autoSync bool
	mu       sync.RWMutex
}

// InitClient initializes the global Charm client for session.
// Thread-safe; later calls return the first client.
func InitClient(session string) (*Client, error) {
	clientOnce.Do(func() {
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", charmHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(dbName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = newClient(db, session)

		// pull remote data on startup unless another process holds the lock
		if !db.IsReadOnly() {
			if err := db.Sync(); err != nil {
				logger.Log.WithError(err).Warn("charm sync on startup failed")
			}
		}
	})

	return globalClient, clientErr
}

func newClient(store kvStore, session string) *Client {
	return &Client{
		kv:       store,
		key:      []byte(storage.SnapshotKey(session)),
		autoSync: true,
	}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// Load reads the session snapshot.
func (c *Client) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := c.kv.Get(c.key)
	if errors.Is(err, badger.ErrKeyNotFound) || (err == nil && len(data) == 0) {
		return nil, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	snap.Normalize()
	return &snap, nil
}

// Save writes the session snapshot and syncs when auto-sync is on.
func (c *Client) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.set(c.key, data)
}

// Delete removes the session snapshot.
func (c *Client) Delete() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Delete(c.key); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// set stores a value with the given key.
func (c *Client) set(key, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}

	if err := c.kv.Set(key, data); err != nil {
		return err
	}
	logger.Log.WithField("key", string(key)).Debug("saved snapshot to charm")
	c.syncIfEnabled()
	return nil
}

// syncIfEnabled calls Sync if autoSync is enabled.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		if err := c.kv.Sync(); err != nil {
			logger.Log.WithError(err).Warn("charm sync failed")
		}
	}
}
