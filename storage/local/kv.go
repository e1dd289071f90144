package local

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// KV mirrors the browser localStorage contract: string values under string keys.
type KV interface {
	// GetItem reports ok=false when the key has never been set.
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
}

const bucketName = "localStorage"

type boltKV struct {
	db     *bbolt.DB
	bucket []byte
}

// NewBoltKV opens (or creates) a bbolt file at path and uses it as the
// persistent key-value medium.
func NewBoltKV(path string) (*boltKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	bucket := []byte(bucketName)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &boltKV{db: db, bucket: bucket}, nil
}

func (b *boltKV) GetItem(key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(key))
		if v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	return value, ok, err
}

func (b *boltKV) SetItem(key, value string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), []byte(value))
	})
}

func (b *boltKV) Close() error {
	return b.db.Close()
}

type memoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryKV returns a KV that lives only as long as the process.
func NewMemoryKV() *memoryKV {
	return &memoryKV{items: make(map[string]string)}
}

func (m *memoryKV) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memoryKV) SetItem(key, value string) error {
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}
