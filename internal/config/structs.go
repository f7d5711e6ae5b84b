package config

type Config struct {
	// App: Global application metadata
	App AppSettings `mapstructure:"app"`

	// Server: Network configuration and execution environment
	Server ServerConfig `mapstructure:"server"`

	// Database: Engine selection and connection parameters
	Database DatabaseConfig `mapstructure:"database"`

	// Storage: Where uploaded checkup images live and how they are accepted
	Storage StorageConfig `mapstructure:"storage"`

	// Cache: In-memory cache in front of blob reads
	Cache CacheConfig `mapstructure:"cache"`

	// Security: Token signing, CORS whitelist, and request throttling
	Security SecurityConfig `mapstructure:"security"`

	// Log: Console logger verbosity
	Log LogConfig `mapstructure:"log"`

	// BaseURL: The public-facing root URL used for absolute link generation
	BaseURL string `mapstructure:"base_url"`
}

type AppSettings struct {
	// Name: Identity of the service used in banners (e.g., "Dentcheck")
	Name string `mapstructure:"name"`

	// Version: Application semantic version (e.g., "0.1.0")
	Version string `mapstructure:"version"`

	StartMessage bool `mapstructure:"start_message"`
}

type ServerConfig struct {
	// Port: The TCP port the HTTP server will bind to (default: 8040)
	Port int `mapstructure:"port"`

	// Env: Execution context (development, staging, production)
	Env string `mapstructure:"env"`
}

type DatabaseConfig struct {
	// Driver: "sqlite" (default) or "postgres"
	Driver string `mapstructure:"driver"`

	// Path: SQLite database file (e.g., ./data/dentcheck.db)
	Path string `mapstructure:"path"`

	// DSN: Postgres connection string, used when Driver is "postgres"
	DSN string `mapstructure:"dsn"`
}

type StorageConfig struct {
	// Driver: "local" (default) or "s3"
	Driver string `mapstructure:"driver"`

	// UploadDir: Directory for the local blob store
	UploadDir string `mapstructure:"upload_dir"`

	// PublicPrefix: URL prefix of stored references (e.g., "/uploads/")
	PublicPrefix string `mapstructure:"public_prefix"`

	// MaxUploadSize: Maximum multipart payload for image attach (e.g., "10MB")
	MaxUploadSize string `mapstructure:"max_upload_size"`

	// MaxDimension: Longest edge in pixels; larger uploads are downscaled. 0 keeps originals.
	MaxDimension int `mapstructure:"max_dimension"`

	S3 S3Config `mapstructure:"s3"`

	Cleaner CleanerConfig `mapstructure:"cleaner"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type CleanerConfig struct {
	// Enabled: Toggles the orphan blob sweeper
	Enabled bool `mapstructure:"enabled"`

	// Interval: How often the sweep runs (e.g., "1h")
	Interval string `mapstructure:"interval"`

	// GracePeriod: Blobs younger than this are never swept (e.g., "30m")
	GracePeriod string `mapstructure:"grace_period"`
}

type CacheConfig struct {
	// Enabled: Toggles the in-memory blob cache
	Enabled bool `mapstructure:"enabled"`

	// MaxCapacity: Maximum RAM allocated for cache in MB (e.g., 64)
	MaxCapacity int `mapstructure:"max_capacity"`

	// TTL: Expiration time for cached items (e.g., "30m")
	TTL string `mapstructure:"ttl"`
}

type SecurityConfig struct {
	// JWTSecret: HMAC key used to sign and verify caller tokens
	JWTSecret string `mapstructure:"jwt_secret"`

	// TokenTTL: Lifetime of issued tokens (e.g., "24h")
	TokenTTL string `mapstructure:"token_ttl"`

	// CorsOrigins: List of allowed domains for browser-based cross-origin requests
	CorsOrigins []string `mapstructure:"cors_origins"`

	// RateLimit: Per-IP token bucket
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	// Enabled: Global toggle for the rate limiting middleware
	Enabled bool `mapstructure:"enabled"`

	// Requests: Number of allowed requests per time window
	Requests int `mapstructure:"requests"`

	// Window: The timeframe for the request limit (e.g., "1s", "1m")
	Window string `mapstructure:"window"`

	// Burst: Temporary allowed spike capacity above the steady-rate limit
	Burst int `mapstructure:"burst"`
}

type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
}
