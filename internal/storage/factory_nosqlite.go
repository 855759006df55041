//go:build !sqlite

package storage

import "fmt"

func newSQLiteStore(_ string) (Store, error) {
	return nil, fmt.Errorf("store backend %q requires building with -tags sqlite", StoreKindSQLite)
}
