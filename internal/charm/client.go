// ABOUTME: Charm KV client wrapper for journal storage.
// ABOUTME: Provides thread-safe initialization and automatic cloud sync.
package charm

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/myjot/internal/logging"
	"github.com/harperreed/myjot/internal/storage"
)

const (
	// DBName is the Charm KV database holding the journal.
	DBName = "myjot"

	// Host is the Charm server the journal syncs with.
	Host = "charm.2389.dev"
)

// ErrDatabaseLocked is returned for writes while another process holds the
// KV lock and the client fell back to read-only mode.
var ErrDatabaseLocked = errors.New("cannot write: database is locked by another process (MCP server?)")

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// kvStore is the subset of the Charm KV API the client uses.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Keys() ([][]byte, error)
	NewTransaction(update bool) (*badger.Txn, error)
	Commit(txn *badger.Txn, callback func(error)) error
	Sync() error
	Reset() error
	IsReadOnly() bool
	Close() error
}

// Client serializes access to the Charm KV store.
type Client struct {
	kv       kvStore
	autoSync bool
	log      *log.Logger
	mu       sync.RWMutex
}

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient(logger *log.Logger) (*Client, error) {
	clientOnce.Do(func() {
		// Set server before opening KV
		if err := os.Setenv("CHARM_HOST", Host); err != nil {
			clientErr = err
			return
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = fmt.Errorf("open charm kv: %w", err)
			return
		}

		globalClient = newClient(db, logger)

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			if err := db.Sync(); err != nil {
				globalClient.log.Warn("initial charm sync failed", "err", err)
			}
		}
	})

	return globalClient, clientErr
}

func newClient(store kvStore, logger *log.Logger) *Client {
	return &Client{
		kv:       store,
		autoSync: true,
		log:      logging.OrDiscard(logger),
	}
}

// Open returns the global client behind the journal gateway.
func Open(logger *log.Logger) (*storage.Repository, error) {
	c, err := InitClient(logger)
	if err != nil {
		return nil, err
	}
	return NewGateway(c), nil
}

// NewGateway exposes c through the storage gateway helpers.
func NewGateway(c *Client) *storage.Repository {
	return storage.NewRepository(c)
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

// syncIfEnabled calls Sync if autoSync is enabled. Caller holds the lock.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		if err := c.kv.Sync(); err != nil {
			c.log.Warn("charm sync failed", "err", err)
		}
	}
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

// KeyCount returns how many journal records are stored locally.
func (c *Client) KeyCount() (map[storage.Collection]int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	counts := make(map[storage.Collection]int)
	for _, k := range keys {
		coll, _, err := storage.ParseRecordKey(string(k))
		if err != nil {
			continue
		}
		counts[coll]++
	}
	return counts, nil
}
