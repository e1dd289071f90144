// Package config loads server settings from .env, an optional YAML file and
// EXCALIAPP_ environment variables, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

const EnvPrefix = "EXCALIAPP_"

type Config struct {
	Listen           string `koanf:"listen"`
	LogLevel         string `koanf:"log_level"`
	LogFile          string `koanf:"log_file"`
	StorageType      string `koanf:"storage_type"`
	LocalStoragePath string `koanf:"local_storage_path"`
	DataSourceName   string `koanf:"data_source_name"`
	DatabaseURL      string `koanf:"database_url"`
	S3BucketName     string `koanf:"s3_bucket_name"`
	S3Endpoint       string `koanf:"s3_endpoint"`
	OIDCUserInfoURL  string `koanf:"oidc_userinfo_url"`
}

func Default() Config {
	return Config{
		Listen:           ":3002",
		LogLevel:         "info",
		StorageType:      "memory",
		LocalStoragePath: "./data",
		DataSourceName:   "excalidraw.db",
	}
}

// Load reads configuration. path may be empty.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("error loading environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	return cfg, nil
}
