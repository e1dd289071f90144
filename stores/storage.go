package stores

import (
	"context"
	"errors"
	"excaliapp/config"
	"excaliapp/core"
	"excaliapp/stores/aws"
	"excaliapp/stores/filesystem"
	"excaliapp/stores/memory"
	"excaliapp/stores/postgres"
	"excaliapp/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// GetStore selects the drawing repository named by cfg.StorageType.
// The returned close func releases the underlying connection and is never nil.
func GetStore(ctx context.Context, cfg config.Config) (core.DrawingRepository, func(), error) {
	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}
	noop := func() {}

	var (
		store   core.DrawingRepository
		closeFn = noop
	)
	switch cfg.StorageType {
	case "filesystem":
		storageField["basePath"] = cfg.LocalStoragePath
		s, err := filesystem.NewStore(cfg.LocalStoragePath)
		if err != nil {
			return nil, noop, err
		}
		store = s
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		s, err := sqlite.NewStore(cfg.DataSourceName)
		if err != nil {
			return nil, noop, err
		}
		store, closeFn = s, func() { s.Close() }
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, noop, errors.New("database_url must be set for postgres storage type")
		}
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		store, closeFn = postgres.NewRepository(pool), pool.Close
	case "s3":
		if cfg.S3BucketName == "" {
			return nil, noop, errors.New("s3_bucket_name must be set for s3 storage type")
		}
		storageField["bucketName"] = cfg.S3BucketName
		s, err := aws.NewStore(ctx, cfg.S3BucketName, cfg.S3Endpoint)
		if err != nil {
			return nil, noop, err
		}
		store = s
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, closeFn, nil
}
