package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gestao-report/internal/cache"
	"gestao-report/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

func newDir(t *testing.T, enabled bool, env string) (*cache.Dir, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{
		CacheDir:     dir,
		CacheEnabled: enabled,
		Environment:  env,
	}
	return cache.New(cfg, zap.NewNop()), dir
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	d, _ := newDir(t, true, "development")

	saved := []record{{ID: "1", Name: "Loja"}}
	d.Save("lojas", saved)

	var loaded []record
	require.True(t, d.Load("lojas", &loaded))
	assert.Equal(t, saved, loaded)
}

func TestLoadMissesWhenAbsent(t *testing.T) {
	d, _ := newDir(t, true, "development")

	var loaded []record
	assert.False(t, d.Load("lojas", &loaded))
}

func TestLoadMissesWhenStale(t *testing.T) {
	d, dir := newDir(t, true, "development")

	d.Save("lojas", []record{{ID: "1"}})

	old := time.Now().Add(-cache.DefaultFreshness - time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "lojas.json"), old, old))

	var loaded []record
	assert.False(t, d.Load("lojas", &loaded))
}

func TestLoadMissesWhenCorrupt(t *testing.T) {
	d, dir := newDir(t, true, "development")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lojas.json"), []byte("{not json"), 0o644))

	var loaded []record
	assert.False(t, d.Load("lojas", &loaded))
}

func TestDisabledDirNeverReadsOrWrites(t *testing.T) {
	d, dir := newDir(t, false, "development")

	d.Save("lojas", []record{{ID: "1"}})
	_, err := os.Stat(filepath.Join(dir, "lojas.json"))
	assert.True(t, os.IsNotExist(err))

	var loaded []record
	assert.False(t, d.Load("lojas", &loaded))
}

func TestProductionNeverUsesCacheEvenWhenEnabled(t *testing.T) {
	d, dir := newDir(t, true, "production")

	d.Save("lojas", []record{{ID: "1"}})
	_, err := os.Stat(filepath.Join(dir, "lojas.json"))
	assert.True(t, os.IsNotExist(err))
}
