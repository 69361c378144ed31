// Package config loads shufflebuddy settings from a YAML file, the
// environment (optionally seeded from a .env file) and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lbp0200/shufflebuddy/shuffle"
)

// 支持的状态后端
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config 命令行工具的配置
type Config struct {
	Backend      string  `yaml:"backend"`       // file (default), badger, redis, sqlite
	StateFile    string  `yaml:"state_file"`    // file backend: JSON state path
	BadgerDir    string  `yaml:"badger_dir"`    // badger backend: database directory
	SQLitePath   string  `yaml:"sqlite_path"`   // sqlite backend: database file
	RedisAddr    string  `yaml:"redis_addr"`    // redis backend: host:port
	RedisPass    string  `yaml:"redis_password"`
	RedisDB      int     `yaml:"redis_db"`
	RedisPrefix  string  `yaml:"redis_prefix"`
	SnapshotName string  `yaml:"snapshot_name"` // key of the snapshot in non-file backends
	Compression  string  `yaml:"compression"`   // none, lz4, zstd
	Seed         *uint64 `yaml:"seed"`          // fixed RNG seed; unset means random
	LogLevel     string  `yaml:"log_level"`
	LogFile      string  `yaml:"log_file"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Backend:      BackendFile,
		SnapshotName: "default",
		Compression:  string(shuffle.CompressionNone),
	}
}

// LoadFile reads a YAML config on top of the defaults. A missing file is not
// an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from SHUFFLEBUDDY_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	str("SHUFFLEBUDDY_BACKEND", &c.Backend)
	str("SHUFFLEBUDDY_STATE_FILE", &c.StateFile)
	str("SHUFFLEBUDDY_BADGER_DIR", &c.BadgerDir)
	str("SHUFFLEBUDDY_SQLITE_PATH", &c.SQLitePath)
	str("SHUFFLEBUDDY_REDIS_ADDR", &c.RedisAddr)
	str("SHUFFLEBUDDY_REDIS_PASSWORD", &c.RedisPass)
	str("SHUFFLEBUDDY_REDIS_PREFIX", &c.RedisPrefix)
	str("SHUFFLEBUDDY_SNAPSHOT", &c.SnapshotName)
	str("SHUFFLEBUDDY_COMPRESSION", &c.Compression)
	str("SHUFFLEBUDDY_LOG_LEVEL", &c.LogLevel)
	str("SHUFFLEBUDDY_LOG_FILE", &c.LogFile)

	if v := getenv("SHUFFLEBUDDY_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHUFFLEBUDDY_REDIS_DB: %w", err)
		}
		c.RedisDB = db
	}
	if v := getenv("SHUFFLEBUDDY_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SHUFFLEBUDDY_SEED: %w", err)
		}
		c.Seed = &seed
	}
	return nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if _, err := shuffle.ParseCompression(c.Compression); err != nil {
		return err
	}
	switch c.Backend {
	case "", BackendFile:
		// 文件路径为空时只在内存中抽取
		return nil
	case BackendBadger:
		if c.BadgerDir == "" {
			return errors.New("badger backend requires badger_dir")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite backend requires sqlite_path")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis backend requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.SnapshotName == "" {
		return fmt.Errorf("%s backend requires snapshot_name", c.Backend)
	}
	return nil
}
