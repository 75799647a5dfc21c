package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStorage stores records in an embedded BadgerDB. An empty path opens
// an in-memory database.
type BadgerStorage struct {
	path string
	db   *badger.DB
}

func NewBadgerStorage(path string) *BadgerStorage {
	return &BadgerStorage{path: path}
}

func (b *BadgerStorage) Init() error {
	var opts badger.Options
	if b.path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(b.path, 0750); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageInit, err)
		}
		opts = badger.DefaultOptions(b.path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}
	b.db = db
	return nil
}

func (b *BadgerStorage) Load(key string) ([]byte, error) {
	if b.db == nil {
		return nil, ErrStorageInit
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return value, nil
}

func (b *BadgerStorage) Save(key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if b.db == nil {
		return ErrStorageInit
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (b *BadgerStorage) Delete(key string) error {
	if b.db == nil {
		return ErrStorageInit
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *BadgerStorage) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
