package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/dmitrijs2005/todokeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept both "90m" strings and integer nanoseconds. Keys missing from the
// file leave the current values untouched.
type JsonConfig struct {
	HTTPAddress              string         `json:"http_address"`
	Debug                    bool           `json:"debug"`
	DatabaseDriver           string         `json:"database_driver"`
	DatabaseDSN              string         `json:"database_dsn"`
	SecretKey                string         `json:"secret_key"`
	PasswordPepper           string         `json:"password_pepper"`
	APITokenValidityDuration timex.Duration `json:"api_token_validity_duration"`
	SessionTTL               timex.Duration `json:"session_ttl"`
	RedisURL                 string         `json:"redis_url"`
	StorageBackend           string         `json:"storage_backend"`
	S3Bucket                 string         `json:"s3_bucket"`
	S3Region                 string         `json:"s3_region"`
	S3BaseEndpoint           string         `json:"s3_base_endpoint"`
	S3AccessKey              string         `json:"s3_access_key"`
	S3SecretKey              string         `json:"s3_secret_key"`
	S3UseSSL                 bool           `json:"s3_use_ssl"`
	LocalStorageDir          string         `json:"local_storage_dir"`
	LogLevel                 string         `json:"log_level"`
	LogFormat                string         `json:"log_format"`
	LogFile                  string         `json:"log_file"`
}

// parseJson overlays the file named by -c/-config onto config. Nothing
// happens when neither flag is given.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := fromConfig(config)
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.apply(config)
	return nil
}

func fromConfig(config *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddress:              config.HTTPAddress,
		Debug:                    config.Debug,
		DatabaseDriver:           config.DatabaseDriver,
		DatabaseDSN:              config.DatabaseDSN,
		SecretKey:                config.SecretKey,
		PasswordPepper:           config.PasswordPepper,
		APITokenValidityDuration: timex.Duration{Duration: config.APITokenValidityDuration},
		SessionTTL:               timex.Duration{Duration: config.SessionTTL},
		RedisURL:                 config.RedisURL,
		StorageBackend:           config.StorageBackend,
		S3Bucket:                 config.S3Bucket,
		S3Region:                 config.S3Region,
		S3BaseEndpoint:           config.S3BaseEndpoint,
		S3AccessKey:              config.S3AccessKey,
		S3SecretKey:              config.S3SecretKey,
		S3UseSSL:                 config.S3UseSSL,
		LocalStorageDir:          config.LocalStorageDir,
		LogLevel:                 config.LogLevel,
		LogFormat:                config.LogFormat,
		LogFile:                  config.LogFile,
	}
}

func (c *JsonConfig) apply(config *Config) {
	config.HTTPAddress = c.HTTPAddress
	config.Debug = c.Debug
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.PasswordPepper = c.PasswordPepper
	config.APITokenValidityDuration = c.APITokenValidityDuration.Duration
	config.SessionTTL = c.SessionTTL.Duration
	config.RedisURL = c.RedisURL
	config.StorageBackend = c.StorageBackend
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3UseSSL = c.S3UseSSL
	config.LocalStorageDir = c.LocalStorageDir
	config.LogLevel = c.LogLevel
	config.LogFormat = c.LogFormat
	config.LogFile = c.LogFile
}
