// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (HTTP ports, TLS, logging, timeouts); AppConfig
// is everything specific to this service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Bearer token configuration
	TokenSecret string        // HMAC signing secret for session tokens (must be strong in production)
	TokenTTL    time.Duration // How long issued tokens stay valid (default: 8h)

	// Record identifier sealing
	SealerSecret string // Secret for sealing record ids into encryptedData tokens

	// Attachment storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for locally stored files

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "uploads/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Usage analytics bucket duration for the dashboard charts
	UsageBucket time.Duration

	// Admin seeding configuration. When set and no active admin exists,
	// an admin account is created on startup.
	SeedAdminLoginID  string
	SeedAdminName     string
	SeedAdminPassword string
}
