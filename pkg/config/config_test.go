package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", FileName)

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[suggest]
limit = 8
order = "alphabetical"

[gemini]
timeout = "30s"
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Suggest.Limit)
	assert.Equal(t, "alphabetical", cfg.Suggest.Order)
	assert.True(t, cfg.Suggest.History)
	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, 64, cfg.Server.MaxLimit)
}

func TestPartialRecoveryKeepsValidSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	// limit has the wrong type, so the typed decode fails
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
max_limit = 20

[suggest]
limit = "many"
history_size = 10

[store]
path = "/tmp/reader.db"
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Server.MaxLimit)
	assert.Equal(t, 5, cfg.Suggest.Limit)
	assert.Equal(t, 10, cfg.Suggest.HistorySize)
	assert.Equal(t, "/tmp/reader.db", cfg.Store.Path)
}

func TestUnparseableFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[server\nmax_limit = "), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Suggest.Limit = 100
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.MaxPrefix = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.MaxLimit = MaxLimitCap + 1
	assert.Error(t, cfg.Validate())
	cfg.Server.MaxLimit = MaxLimitCap
	assert.NoError(t, cfg.Validate())
}

func TestTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gemini.Timeout = "soon"
	assert.Equal(t, 90*time.Second, cfg.TimeoutDuration())
}

func TestAPIKeyFromEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gemini.APIKeyEnv = "TOPICSERVE_TEST_KEY"
	t.Setenv("TOPICSERVE_TEST_KEY", "secret")
	assert.Equal(t, "secret", cfg.APIKey())
}
