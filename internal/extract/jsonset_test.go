package extract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenJSON(t *testing.T) {
	data := []byte(`{
		"spring": {"datasource": {"pool_size": 10}},
		"servers": [{"port": 8080}, {"port": 8081}],
		"debug": false
	}`)

	chunks, err := FlattenJSON(data)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	// Sorted key order keeps output stable.
	assert.Equal(t, "debug", chunks[0].Key)
	assert.Equal(t, "debug: false", chunks[0].Text)
	assert.Equal(t, "servers[0].port", chunks[1].Key)
	assert.Equal(t, "servers[1].port", chunks[2].Key)
	assert.Equal(t, "spring.datasource.pool_size", chunks[3].Key)
	assert.Equal(t, "spring.datasource.pool_size: 10", chunks[3].Text)
}

func TestFlattenJSONInvalid(t *testing.T) {
	_, err := FlattenJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestLoadJSONDatasetMissingFile(t *testing.T) {
	assert.Empty(t, LoadJSONDataset(filepath.Join(t.TempDir(), "absent.json"), nil))
}
