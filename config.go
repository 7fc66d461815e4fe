// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package goblin

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"
	yaml "gopkg.in/yaml.v2"
)

const (
	// DefaultDataDir is where relations live unless overridden by
	// config, environment or flag.
	DefaultDataDir = "goblin-data"

	// DefaultFlushInterval is how often the background writer wakes to
	// snapshot dirty relations.
	DefaultFlushInterval = 5 * time.Second

	// DataDirEnv overrides the data directory; it has the lowest
	// precedence of the override mechanisms.
	DataDirEnv = "GOBLIN_DATA_DIR"
)

// ErrConfig is returned when a configuration file cannot be read or a
// value cannot be coerced.
var ErrConfig = errors.NewKind("invalid configuration: %s")

// Config for the Engine.
type Config struct {
	// DataDir is the directory holding one file per relation.
	DataDir string
	// FlushInterval is the period of the background write-back thread.
	FlushInterval time.Duration
	// Logger receives engine and storage log entries. Defaults to the
	// logrus standard logger.
	Logger *logrus.Entry
}

// DefaultConfig returns the built-in defaults with the environment
// override applied.
func DefaultConfig() *Config {
	cfg := &Config{
		DataDir:       DefaultDataDir,
		FlushInterval: DefaultFlushInterval,
	}
	if dir := os.Getenv(DataDirEnv); dir != "" {
		cfg.DataDir = dir
	}
	return cfg
}

// LoadConfig reads a YAML config file over the defaults. Recognized
// keys: data_dir (string) and flush_interval (duration string or
// seconds).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrConfig.New(err.Error())
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ErrConfig.New(err.Error())
	}

	if v, ok := raw["data_dir"]; ok {
		dir, err := cast.ToStringE(v)
		if err != nil {
			return nil, ErrConfig.New("data_dir: " + err.Error())
		}
		cfg.DataDir = dir
	}
	if v, ok := raw["flush_interval"]; ok {
		var interval time.Duration
		var err error
		switch v.(type) {
		case int, int64, uint64, float64:
			// A bare number is a count of seconds.
			var secs float64
			secs, err = cast.ToFloat64E(v)
			interval = time.Duration(secs * float64(time.Second))
		default:
			interval, err = cast.ToDurationE(v)
		}
		if err != nil {
			return nil, ErrConfig.New("flush_interval: " + err.Error())
		}
		cfg.FlushInterval = interval
	}
	return cfg, nil
}
