package accountstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sollpay/sollpay-programs/internal/storage/database"
	"github.com/sollpay/sollpay-programs/internal/storage/database/bbolt"
	"github.com/sollpay/sollpay-programs/internal/storage/database/leveldb"
	"github.com/sollpay/sollpay-programs/internal/storage/database/memory"
	"github.com/sollpay/sollpay-programs/internal/storage/database/pebble"
)

// Backends lists the database backends OpenDB accepts
var Backends = []string{"pebble", "leveldb", "bbolt", "memory"}

// OpenDB opens the named backend under dir. The memory backend ignores dir.
func OpenDB(backend, dir string) (database.DB, error) {
	if backend == "memory" {
		return memory.New(), nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	switch backend {
	case "pebble":
		return pebble.Open(filepath.Join(dir, "accounts.pebble"))
	case "leveldb":
		return leveldb.Open(filepath.Join(dir, "accounts.ldb"))
	case "bbolt":
		return bbolt.Open(filepath.Join(dir, "accounts.bolt"))
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
