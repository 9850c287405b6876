// internal/app/bootstrap/storage.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// buildStorage constructs the attachment store from app config.
// Local storage serves files straight off disk; S3 issues presigned
// URLs, optionally through a CloudFront distribution.
func buildStorage(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (storage.Store, error) {
	switch appCfg.StorageType {
	case "local":
		store, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, fmt.Errorf("local storage init: %w", err)
		}
		logger.Info("attachment storage ready",
			zap.String("type", "local"),
			zap.String("path", appCfg.StorageLocalPath))
		return store, nil

	case "s3":
		store, err := storage.NewS3(ctx, storage.S3Config{
			Region:                   appCfg.StorageS3Region,
			Bucket:                   appCfg.StorageS3Bucket,
			Prefix:                   appCfg.StorageS3Prefix,
			CloudFrontURL:            appCfg.StorageCFURL,
			CloudFrontKeyPairID:      appCfg.StorageCFKeyPairID,
			CloudFrontPrivateKeyPath: appCfg.StorageCFKeyPath,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage init: %w", err)
		}
		logger.Info("attachment storage ready",
			zap.String("type", "s3"),
			zap.String("bucket", appCfg.StorageS3Bucket))
		return store, nil

	default:
		// ValidateConfig rejects unknown types before we get here.
		return nil, fmt.Errorf("unknown storage_type %q", appCfg.StorageType)
	}
}
