/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the acceptor's runtime configuration from an
// optional YAML file with FIXACC_-prefixed environment variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for the acceptor process.
type Config struct {
	Listen  ListenConfig  `mapstructure:"listen"`
	Session SessionConfig `mapstructure:"session"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ListenConfig is the FIX TCP listener's bind address and session cap.
type ListenConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MaxSessions int    `mapstructure:"max_sessions"` // 0 = unbounded
}

// SessionConfig tunes the per-session handshake/heartbeat defaults.
type SessionConfig struct {
	ServerCompID           string  `mapstructure:"server_comp_id"`
	DefaultHeartbeatS      int     `mapstructure:"default_heartbeat_s"`
	InboundIdleTimeoutMult float64 `mapstructure:"inbound_idle_timeout_multiplier"`
	ShutdownGracePeriodS   int     `mapstructure:"shutdown_grace_period_s"`
}

// AdminConfig binds the administrative HTTP surface.
type AdminConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StoreConfig points at the audit SQLite database.
type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when no file or env override is
// present.
func Default() Config {
	return Config{
		Listen: ListenConfig{
			Host:        "0.0.0.0",
			Port:        15001,
			MaxSessions: 0,
		},
		Session: SessionConfig{
			ServerCompID:           "BROKER",
			DefaultHeartbeatS:      30,
			InboundIdleTimeoutMult: 2.4,
			ShutdownGracePeriodS:   5,
		},
		Admin: AdminConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Store: StoreConfig{
			SQLitePath: "fix-acceptor.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration starting from Default, layering in path (if
// non-empty and present) and then FIXACC_-prefixed environment overrides -
// e.g. FIXACC_LISTEN_PORT, FIXACC_SESSION_SERVER_COMP_ID.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FIXACC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return out, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("listen.host", cfg.Listen.Host)
	v.SetDefault("listen.port", cfg.Listen.Port)
	v.SetDefault("listen.max_sessions", cfg.Listen.MaxSessions)
	v.SetDefault("session.server_comp_id", cfg.Session.ServerCompID)
	v.SetDefault("session.default_heartbeat_s", cfg.Session.DefaultHeartbeatS)
	v.SetDefault("session.inbound_idle_timeout_multiplier", cfg.Session.InboundIdleTimeoutMult)
	v.SetDefault("session.shutdown_grace_period_s", cfg.Session.ShutdownGracePeriodS)
	v.SetDefault("admin.host", cfg.Admin.Host)
	v.SetDefault("admin.port", cfg.Admin.Port)
	v.SetDefault("store.sqlite_path", cfg.Store.SQLitePath)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Validate checks the configuration is usable before the acceptor starts.
func (c Config) Validate() error {
	if c.Listen.Port <= 0 {
		return fmt.Errorf("listen.port must be > 0")
	}
	if c.Session.ServerCompID == "" {
		return fmt.Errorf("session.server_comp_id is required")
	}
	if c.Session.DefaultHeartbeatS <= 0 {
		return fmt.Errorf("session.default_heartbeat_s must be > 0")
	}
	if c.Session.InboundIdleTimeoutMult <= 1 {
		return fmt.Errorf("session.inbound_idle_timeout_multiplier must be > 1")
	}
	if c.Admin.Port <= 0 {
		return fmt.Errorf("admin.port must be > 0")
	}
	return nil
}
