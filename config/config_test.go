package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20000, c.Query.LargeCollectionThreshold)
	assert.Equal(t, 5000, c.Query.ChunkSize)
	assert.Equal(t, "schema.yaml", c.Schema.File)
	assert.Equal(t, "error", c.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataservice.yaml")
	err := os.WriteFile(path, []byte(`
database:
  url: postgres://localhost:5432/shop
query:
  largeCollectionThreshold: 100
  chunkSize: 10
`), 0600)
	require.NoError(t, err)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/shop", c.Database.URL)
	assert.Equal(t, 100, c.Query.LargeCollectionThreshold)
	assert.Equal(t, 10, c.Query.ChunkSize)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATASERVICE_QUERY_CHUNKSIZE", "250")
	t.Setenv("DATASERVICE_DATABASE_URL", "postgres://db/test")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 250, c.Query.ChunkSize)
	assert.Equal(t, "postgres://db/test", c.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
