package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/storage/memory"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSeed(t *testing.T) {
	t.Parallel()

	path := writeSeed(t, `[
		{"primary_key":"SITE-7","secondary_key":"NORTH","coordinates":"9.9281,-84.0907","display_name":"North gate"},
		{"primary_key":"SITE-7","secondary_key":"SOUTH","lat":9.9270,"lng":-84.0907}
	]`)

	records, err := memory.LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	dir := memory.NewDirectory(records...)
	rec, err := dir.Lookup(context.Background(), domain.TargetKey{PrimaryKey: "SITE-7", SecondaryKey: "SOUTH"})
	require.NoError(t, err)
	require.NotNil(t, rec.Lat)
	assert.InDelta(t, 9.9270, *rec.Lat, 1e-9)
}

func TestLoadSeed_Errors(t *testing.T) {
	t.Parallel()

	_, err := memory.LoadSeed(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = memory.LoadSeed(writeSeed(t, `{"not":"an array"}`))
	assert.Error(t, err)

	_, err = memory.LoadSeed(writeSeed(t, `[{"primary_key":"SITE-7"}]`))
	assert.Error(t, err)
}
