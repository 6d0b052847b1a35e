package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
)

// serverFlags lists every flag parseFlags owns; -c/-config and -env are
// consumed by the earlier stages.
var serverFlags = []string{
	"-a", "-debug", "-driver", "-d", "-s", "-pepper", "-t", "-session-ttl", "-redis",
	"-storage", "-b", "-g", "-e", "-u", "-p", "-ssl", "-local-dir",
	"-log-level", "-log-format", "-log-file",
}

// parseFlags overlays command-line flags onto config.
//
// Supported flags:
//
//	-a string          HTTP bind address (e.g. ":5000")
//	-debug             verbose logging and detailed error pages
//	-driver string     database driver: pgx or sqlite
//	-d string          database DSN
//	-s string          secret key for API tokens
//	-pepper string     password pepper
//	-t int             API token validity, minutes
//	-session-ttl int   browser session lifetime, minutes
//	-redis string      Redis URL for session storage
//	-storage string    attachment backend: s3, minio, local, memory
//	-b / -g / -e       S3 bucket / region / endpoint
//	-u / -p            S3 access key / secret key
//	-ssl               use TLS towards MinIO
//	-local-dir string  root directory of the local backend
//	-log-level / -log-format / -log-file
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddress, "a", config.HTTPAddress, "address and port to run server")
	fs.BoolVar(&config.Debug, "debug", config.Debug, "debug mode")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.PasswordPepper, "pepper", config.PasswordPepper, "password pepper")

	apiTokenTTL := fs.Int("t", int(config.APITokenValidityDuration.Minutes()), "api token validity (in minutes)")
	sessionTTL := fs.Int("session-ttl", int(config.SessionTTL.Minutes()), "session lifetime (in minutes)")

	fs.StringVar(&config.RedisURL, "redis", config.RedisURL, "redis URL for sessions")
	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "attachment storage backend")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.BoolVar(&config.S3UseSSL, "ssl", config.S3UseSSL, "use TLS for MinIO")
	fs.StringVar(&config.LocalStorageDir, "local-dir", config.LocalStorageDir, "local storage directory")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format: json, text, console")
	fs.StringVar(&config.LogFile, "log-file", config.LogFile, "log file (rotated)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.APITokenValidityDuration = time.Duration(*apiTokenTTL) * time.Minute
	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
	return nil
}
