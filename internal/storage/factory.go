package storage

import "fmt"

const (
	StoreKindMemory = "memory"
	StoreKindSQLite = "sqlite"
)

// NewStore builds the run store for the requested backend kind. An
// empty kind selects the in-memory backend.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", StoreKindMemory:
		return NewMemoryStore(), nil
	case StoreKindSQLite:
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend %q (supported: %s, %s)", kind, StoreKindMemory, StoreKindSQLite)
	}
}

// CloseIfSupported releases backends holding external resources. The
// memory backend holds none and is a no-op.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
