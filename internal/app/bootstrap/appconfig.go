// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for Corkboard.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, log level); everything specific
// to this application lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: corkboard-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // How long a signed-in session stays valid

	// Attachment storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/attachments")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/attachments")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "attachments/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Google OAuth configuration. Sign-in with Google is offered only
	// when both values are present.
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL used to build absolute links (OAuth callbacks).
	BaseURL string // e.g., "https://corkboard.example.com" or "http://localhost:3000"

	// SystemAdminEmail names an account that is granted the system_admin
	// role on startup. Blank disables the bootstrap.
	SystemAdminEmail string

	// Background worker intervals
	VoteRecountInterval  time.Duration // periodic vote_count reconciliation sweep
	StateCleanupInterval time.Duration // expired OAuth state purge
}
