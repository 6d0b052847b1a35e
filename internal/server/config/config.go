// Package config handles configuration for the task server: defaults, an
// optional dotenv file plus the process environment, an optional JSON file
// and finally command-line flags, each overriding the previous stage.
package config

import (
	"fmt"
	"os"
	"time"
)

// Storage backends for task attachments.
const (
	StorageS3     = "s3"
	StorageMinio  = "minio"
	StorageLocal  = "local"
	StorageMemory = "memory"
)

// Config holds runtime settings for the task server.
//
// Fields:
//   - HTTPAddress: bind address of the web server.
//   - DatabaseDriver / DatabaseDSN: "pgx" (PostgreSQL) or "sqlite" and its DSN.
//   - SecretKey: HMAC secret for API bearer tokens (HS256). Do not use the default in prod.
//   - PasswordPepper: server-wide secret mixed into every password hash.
//   - APITokenValidityDuration / SessionTTL: lifetimes of bearer tokens and browser sessions.
//   - RedisURL: session storage; in-process memory when empty.
//   - StorageBackend and S3*/LocalStorageDir: where attachments live.
type Config struct {
	HTTPAddress              string
	Debug                    bool
	DatabaseDriver           string
	DatabaseDSN              string
	SecretKey                string
	PasswordPepper           string
	APITokenValidityDuration time.Duration
	SessionTTL               time.Duration
	RedisURL                 string
	StorageBackend           string
	S3Bucket                 string
	S3Region                 string
	S3BaseEndpoint           string
	S3AccessKey              string
	S3SecretKey              string
	S3UseSSL                 bool
	LocalStorageDir          string
	LogLevel                 string
	LogFormat                string
	LogFile                  string
}

// LoadDefaults populates Config with development defaults: an SQLite file
// database next to the binary and the S3 bucket name the app always used.
func (c *Config) LoadDefaults() {
	c.HTTPAddress = ":5000"
	c.Debug = false
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:todo.db?_pragma=busy_timeout(5000)"
	c.SecretKey = "secretKey"
	c.PasswordPepper = ""
	c.APITokenValidityDuration = 60 * time.Minute
	c.SessionTTL = 24 * time.Hour
	c.RedisURL = ""
	c.StorageBackend = StorageS3
	c.S3Bucket = "default-bucket-name"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.S3AccessKey = ""
	c.S3SecretKey = ""
	c.S3UseSSL = false
	c.LocalStorageDir = "uploads"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.LogFile = ""
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	switch c.StorageBackend {
	case StorageS3, StorageMinio, StorageLocal, StorageMemory:
	default:
		return fmt.Errorf("unsupported storage backend %q", c.StorageBackend)
	}
	if c.StorageBackend == StorageMinio && c.S3BaseEndpoint == "" {
		return fmt.Errorf("storage backend %q requires an S3 endpoint", c.StorageBackend)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	return nil
}

// LoadConfig builds a Config from os.Args and the environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, then the environment (after loading the dotenv
// file), then the JSON file, then flags found in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
