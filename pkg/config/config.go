// Copyright 2024 Ant Group Co., Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	DefaultLogLevel     = "info"
	DefaultMaxPlanDepth = 1000
	DefaultMaxPlanNodes = 100000
	DefaultMaxExprNodes = 100000
	DefaultQueryDesc    = "queryDesc"
	DefaultOutputFormat = FormatText
)

const (
	DefaultLogMaxSizeInMegaBytes = 100
	DefaultLogMaxBackupsCount    = 10
	DefaultLogMaxAgeInDays       = 30
	DefaultLogCompress           = false
)

const (
	FormatText = "text"
	FormatDot  = "dot"
	FormatJSON = "json"
)

const (
	StorageTypeSQLite   = "sqlite"
	StorageTypeMySQL    = "mysql"
	StorageTypePostgres = "postgres"
)

// ArchiveConnStrEnv overrides archive.storage.conn_str.
const ArchiveConnStrEnv = "PLANDUMP_ARCHIVE_CONN_STR"

type LogRotateConf struct {
	MaxSizeInMegaBytes int  `yaml:"max_size_mb"`
	MaxBackupsCount    int  `yaml:"max_backups"`
	MaxAgeInDays       int  `yaml:"max_age_days"`
	Compress           bool `yaml:"compress"`
}

type OutputConf struct {
	Format string `yaml:"format"`
	// File is written instead of stdout when set.
	File  string `yaml:"file"`
	Color bool   `yaml:"color"`
}

type StorageConf struct {
	Type            string        `yaml:"type"`
	ConnStr         string        `yaml:"conn_str"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type ArchiveConf struct {
	Enabled bool        `yaml:"enabled"`
	Storage StorageConf `yaml:"storage"`
}

// Config contains settings of the plandump tool
type Config struct {
	LogLevel string `yaml:"log_level"`
	// LogFile adds a rotated file next to stderr logging.
	LogFile      string        `yaml:"log_file"`
	LogRotate    LogRotateConf `yaml:"log_rotate"`
	MaxPlanDepth int           `yaml:"max_plan_depth"`
	MaxPlanNodes int           `yaml:"max_plan_nodes"`
	MaxExprNodes int           `yaml:"max_expr_nodes"`
	// QueryDesc is the dotted path of the QueryDesc inside an image.
	QueryDesc string      `yaml:"query_desc"`
	Output    OutputConf  `yaml:"output"`
	Archive   ArchiveConf `yaml:"archive"`
}

// NewConfig constructs Config from YAML file
func NewConfig(configPath string) (*Config, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %v", configPath, err)
	}
	config := NewDefaultConfig()
	if err = yaml.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", configPath, err)
	}
	ApplyEnv(config)
	if err := CheckConfigValues(config); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv copies environment overrides into config.
func ApplyEnv(config *Config) {
	if connStr := os.Getenv(ArchiveConnStrEnv); connStr != "" {
		config.Archive.Storage.ConnStr = connStr
	}
}

func CheckConfigValues(config *Config) error {
	if _, err := log.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("log_level: %v", err)
	}
	if config.MaxPlanDepth <= 0 {
		return fmt.Errorf("max_plan_depth must be positive, got %d", config.MaxPlanDepth)
	}
	if config.MaxPlanNodes <= 0 {
		return fmt.Errorf("max_plan_nodes must be positive, got %d", config.MaxPlanNodes)
	}
	if config.MaxExprNodes <= 0 {
		return fmt.Errorf("max_expr_nodes must be positive, got %d", config.MaxExprNodes)
	}
	if config.QueryDesc == "" {
		return fmt.Errorf("query_desc couldn't be empty")
	}
	switch config.Output.Format {
	case FormatText, FormatDot, FormatJSON:
	default:
		return fmt.Errorf("unsupported output format %q", config.Output.Format)
	}
	if config.Archive.Enabled {
		return CheckStorage(&config.Archive.Storage)
	}
	return nil
}

// CheckStorage validates archive database settings.
func CheckStorage(s *StorageConf) error {
	switch s.Type {
	case StorageTypeSQLite, StorageTypeMySQL, StorageTypePostgres:
	default:
		return fmt.Errorf("unsupported archive storage type %q", s.Type)
	}
	if s.ConnStr == "" {
		return fmt.Errorf("archive conn_str couldn't be empty, set it in config or %s", ArchiveConnStrEnv)
	}
	return nil
}

func NewDefaultConfig() *Config {
	var config Config
	config.LogLevel = DefaultLogLevel
	config.LogRotate = LogRotateConf{
		MaxSizeInMegaBytes: DefaultLogMaxSizeInMegaBytes,
		MaxBackupsCount:    DefaultLogMaxBackupsCount,
		MaxAgeInDays:       DefaultLogMaxAgeInDays,
		Compress:           DefaultLogCompress,
	}
	config.MaxPlanDepth = DefaultMaxPlanDepth
	config.MaxPlanNodes = DefaultMaxPlanNodes
	config.MaxExprNodes = DefaultMaxExprNodes
	config.QueryDesc = DefaultQueryDesc
	config.Output = OutputConf{Format: DefaultOutputFormat}
	config.Archive.Storage = StorageConf{
		Type:            StorageTypeSQLite,
		ConnStr:         "plandump.db",
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxIdleTime: -1,
		ConnMaxLifetime: -1,
	}
	return &config
}
