package storage

// Store is a durable key/value record store. Every Save overwrites the whole
// value; there are no partial updates, so the last writer wins.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error

	Init() error
	Close() error
}
