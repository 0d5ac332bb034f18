package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quanta-labs/quanta-go/pkg/core/storage/dbconfig"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
ApplicationConfiguration:
  DBConfiguration:
    Type: leveldb
    LevelDBOptions:
      DataDirectoryPath: /tmp/quanta/state
  LogLevel: debug
  TrieCacheSize: 5000
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, dbconfig.LevelDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
	require.Equal(t, "/tmp/quanta/state", cfg.ApplicationConfiguration.DBConfiguration.LevelDBOptions.DataDirectoryPath)
	require.Equal(t, "debug", cfg.ApplicationConfiguration.LogLevel)
	require.Equal(t, 5000, cfg.ApplicationConfiguration.TrieCacheSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}
