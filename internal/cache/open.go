package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Backend names accepted by OpenStore besides connection URLs.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DefaultSQLitePath returns the SQLite cache location under the XDG
// cache directory.
func DefaultSQLitePath() string {
	return filepath.Join(xdg.CacheHome, "hotellens", "cache.db")
}

// OpenStore opens the durable store described by backend:
//
//	"" or "memory"            no durable tier (nil Store)
//	"sqlite"                  SQLite at DefaultSQLitePath
//	"sqlite:///path/to.db"    SQLite at the given path
//	"redis://..."             Redis
//	"postgres://..."          PostgreSQL
func OpenStore(ctx context.Context, backend string) (Store, error) {
	backend = strings.TrimSpace(backend)
	switch {
	case backend == "" || backend == BackendMemory:
		return nil, nil
	case backend == BackendSQLite:
		return store(OpenSQLite(DefaultSQLitePath()))
	case strings.HasPrefix(backend, "sqlite://"):
		return store(OpenSQLite(strings.TrimPrefix(backend, "sqlite://")))
	case strings.HasPrefix(backend, "redis://"), strings.HasPrefix(backend, "rediss://"):
		return store(OpenRedis(ctx, backend))
	case strings.HasPrefix(backend, "postgres://"), strings.HasPrefix(backend, "postgresql://"):
		return store(OpenPostgres(ctx, backend))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// store keeps a failed open from producing a non-nil Store holding a nil
// pointer.
func store[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
