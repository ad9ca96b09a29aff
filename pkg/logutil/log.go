// Copyright 2025 CCBR.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package logutil

import (
	"strings"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines the logging configuration shared by all spacesavers
// commands.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level"`
	// File is the log output path. Empty means stderr.
	File string `toml:"file" json:"file"`

	FileMaxSize    int `toml:"max-size" json:"max-size"`
	FileMaxDays    int `toml:"max-days" json:"max-days"`
	FileMaxBackups int `toml:"max-backups" json:"max-backups"`

	// SamplingInitial and SamplingThereafter configure zap sampling,
	// zero disables sampling.
	SamplingInitial    int `toml:"sampling-initial" json:"sampling-initial"`
	SamplingThereafter int `toml:"sampling-thereafter" json:"sampling-thereafter"`
}

// Adjust normalizes the configuration in place.
func (cfg *Config) Adjust() {
	if len(cfg.Level) == 0 {
		cfg.Level = "info"
	}
	cfg.Level = strings.ToLower(cfg.Level)
	if cfg.Level == "warning" {
		cfg.Level = "warn"
	}
}

// InitLogger initializes the global logger according to cfg. It must be
// called once, before any logging happens.
func InitLogger(cfg *Config) error {
	cfg.Adjust()

	pclogConfig := &log.Config{
		Level: cfg.Level,
		File: log.FileLogConfig{
			Filename:   cfg.File,
			MaxSize:    cfg.FileMaxSize,
			MaxDays:    cfg.FileMaxDays,
			MaxBackups: cfg.FileMaxBackups,
		},
	}
	if cfg.SamplingInitial != 0 && cfg.SamplingThereafter != 0 {
		pclogConfig.Sampling = &zap.SamplingConfig{
			Initial:    cfg.SamplingInitial,
			Thereafter: cfg.SamplingThereafter,
		}
	}

	logger, props, err := log.InitLogger(pclogConfig)
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

// SetLogLevel changes the log level of the global logger on the fly.
func SetLogLevel(level string) error {
	l := new(zapcore.Level)
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return errors.Trace(err)
	}
	log.SetLevel(*l)
	return nil
}

// ZapErrorFilter wraps zap.Error, but return zap.Error(nil) when the error
// cause matches any of the given filtered errors. It is useful to suppress
// expected errors like context.Canceled in shutdown paths.
func ZapErrorFilter(err error, filteredErrors ...error) zap.Field {
	cause := errors.Cause(err)
	for _, filteredErr := range filteredErrors {
		if cause == filteredErr {
			return zap.Error(nil)
		}
	}
	return zap.Error(err)
}
