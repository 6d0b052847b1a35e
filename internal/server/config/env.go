package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// defaultEnvFile is loaded when present; a file named with -env must exist.
const defaultEnvFile = ".env"

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// parseEnv loads the dotenv file into the process environment (without
// overriding variables that are already set) and copies recognised
// variables into config.
func parseEnv(config *Config, args []string) error {
	envFile := flagx.EnvFileFlag(args)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", defaultEnvFile, err)
	}

	str := func(name string, dst *string) {
		if v, ok := lookupEnv(name); ok {
			*dst = v
		}
	}

	str("HTTP_ADDRESS", &config.HTTPAddress)
	str("DATABASE_DRIVER", &config.DatabaseDriver)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	str("PASSWORD_PEPPER", &config.PasswordPepper)
	str("REDIS_URL", &config.RedisURL)
	str("STORAGE_BACKEND", &config.StorageBackend)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_ACCESS_KEY", &config.S3AccessKey)
	str("S3_SECRET_KEY", &config.S3SecretKey)
	str("LOCAL_STORAGE_DIR", &config.LocalStorageDir)
	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_FORMAT", &config.LogFormat)
	str("LOG_FILE", &config.LogFile)

	for name, dst := range map[string]*bool{
		"DEBUG":      &config.Debug,
		"S3_USE_SSL": &config.S3UseSSL,
	} {
		if v, ok := lookupEnv(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			*dst = b
		}
	}

	for name, dst := range map[string]*time.Duration{
		"API_TOKEN_TTL": &config.APITokenValidityDuration,
		"SESSION_TTL":   &config.SessionTTL,
	} {
		if v, ok := lookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			*dst = d
		}
	}

	return nil
}
