package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/onboarding/internal/client/config"
	"github.com/dmitrijs2005/onboarding/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/onboarding/internal/filex"
)

// storageFile is the SQLite file used when no path is configured.
const storageFile = "onboard.db"

var dataDir = filex.DataDir

func nopClose() error { return nil }

// OpenStorage opens the durable store selected by c.StorageBackend. When a
// passphrase is configured the store is wrapped so values are sealed at rest.
// The returned func releases the backend.
func OpenStorage(ctx context.Context, c *config.Config) (metadata.Repository, func() error, error) {
	var (
		repo    metadata.Repository
		closeFn = nopClose
	)

	switch c.StorageBackend {
	case config.StorageSQLite, "":
		path := c.StoragePath
		if path == "" {
			dir, err := dataDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dir, storageFile)
		} else if err := filex.EnsureParentDir(path); err != nil {
			return nil, nil, err
		}
		r, db, err := metadata.Open(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening %s: %w", path, err)
		}
		repo, closeFn = r, db.Close
	case config.StorageKeyring:
		// one account per backend so two deployments never share a session
		repo = metadata.NewKeyringRepository(metadata.DefaultKeyringService, c.APIURL)
	case config.StorageRedis:
		r, err := metadata.OpenRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		repo, closeFn = r, r.Close
	case config.StorageMemory:
		repo = metadata.NewMemoryRepository()
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.StorePassphrase != "" {
		sealed, err := metadata.NewSealedRepository(ctx, repo, []byte(c.StorePassphrase))
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		repo = sealed
	}
	return repo, closeFn, nil
}
