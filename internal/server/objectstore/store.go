// Package objectstore stores task attachments in a key/value object store.
//
// Every backend honours the same contract:
//   - Delete of a missing key succeeds, so a failed multi-step deletion can
//     be retried safely;
//   - Get of a missing key returns common.ErrorNotFound;
//   - missing credentials surface as common.ErrorNoCredentials, any other
//     remote failure wraps common.ErrorRemoteStorage.
package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
)

// Store is the object storage port used by the task service.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3BaseEndpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}, logger)
	case config.StorageMinio:
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.S3BaseEndpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		}, logger)
	case config.StorageLocal:
		return NewLocalStore(cfg.LocalStorageDir)
	case config.StorageMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func remoteError(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", common.ErrorRemoteStorage, op, key, err)
}
