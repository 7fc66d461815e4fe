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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig()
	require.Equal(DefaultDataDir, cfg.DataDir)
	require.Equal(DefaultFlushInterval, cfg.FlushInterval)
}

func TestDefaultConfigEnvOverride(t *testing.T) {
	require := require.New(t)

	t.Setenv(DataDirEnv, "/tmp/goblin-env")
	cfg := DefaultConfig()
	require.Equal("/tmp/goblin-env", cfg.DataDir)
}

func TestLoadConfig(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "goblin.yml")
	require.NoError(os.WriteFile(path, []byte(
		"data_dir: /var/lib/goblin\nflush_interval: 30s\n",
	), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(err)
	require.Equal("/var/lib/goblin", cfg.DataDir)
	require.Equal(30*time.Second, cfg.FlushInterval)
}

func TestLoadConfigPartial(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "goblin.yml")
	require.NoError(os.WriteFile(path, []byte("data_dir: somewhere\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(err)
	require.Equal("somewhere", cfg.DataDir)
	require.Equal(DefaultFlushInterval, cfg.FlushInterval)
}

func TestLoadConfigErrors(t *testing.T) {
	require := require.New(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(err)
	require.True(ErrConfig.Is(err))

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(os.WriteFile(path, []byte("flush_interval: [nope]\n"), 0644))
	_, err = LoadConfig(path)
	require.Error(err)
	require.True(ErrConfig.Is(err))
}
