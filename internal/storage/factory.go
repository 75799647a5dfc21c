package storage

import (
	"path/filepath"

	"ayurwell-backend/pkg/logger"
)

// New builds and initializes the store named by storageType ("memory",
// "disk" or "badger"). Initialization failures fall back to memory.
func New(storageType, dataDir string) Store {
	var store Store

	switch storageType {
	case "disk":
		store = NewDiskStorage(dataDir)
	case "badger":
		store = NewBadgerStorage(filepath.Join(dataDir, "badger"))
	default:
		store = NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize %s storage: %v", storageType, err)
		store = NewMemoryStorage()
		store.Init()
	}

	return store
}
