// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded via [LoadConfig] from environment variables
// (through viper), with optional overrides from a shadowcrawler.yaml file
// in the working directory. The following settings are supported:
//
//   - MEDIA_DIR: Path to media directory (default: /media)
//   - CACHE_DIR: Path to cache directory for thumbnails and the storage
//     stats cache (default: /cache)
//   - DATABASE_DIR: Path to catalog database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - INDEX_LANES: Crawler lane count; 0 derives it from GOMAXPROCS
//     (default: 0)
//   - METRICS_ENABLED: Enable or disable the /metrics endpoint (default: true)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//
// # Directory Setup
//
// The package validates and creates required directories:
//   - Database directory: Required, must be writable
//   - Cache directory: Optional, enables thumbnails if writable
//   - Media directory: Checked but not created (should be mounted)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
