package storage

import "strings"

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - cfg: storage configuration including endpoint, credentials, and bucket.
// Returns:
//   - ObjectStorage: initialized storage client implementation.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *S3Config) (ObjectStorage, error) {
	// Auto-detect storage type if not specified
	if cfg.Type == "" {
		cfg.Type = detectStoreType(cfg.Endpoint)
	}

	return NewS3Store(cfg)
}

// detectStoreType attempts to detect the storage type from the endpoint
func detectStoreType(endpoint string) StoreType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StoreTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StoreTypeS3
	default:
		return StoreTypeS3Compatible
	}
}
