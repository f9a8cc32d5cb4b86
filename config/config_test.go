package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MdEnamulHaque007/UPTOP-sub000/errors"
	"github.com/MdEnamulHaque007/UPTOP-sub000/pipeline"
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"service": {
			"baseUrl": "https://api.example.com",
			"resources": {"inventory": "/inventory.json"}
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Service.CacheTTL.Std())
	assert.Equal(t, 10*time.Second, cfg.Service.RequestTimeout.Std())
	assert.Equal(t, 3, cfg.Service.MaxAttempts)
	assert.Equal(t, DurableNone, cfg.Durable.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeConfig(t, `{
		"service": {
			"resources": {"inventory": "https://api.example.com/inv"},
			"cacheTtl": "90s",
			"requestTimeout": "2s",
			"retryBaseDelay": "250ms"
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Service.CacheTTL.Std())
	assert.Equal(t, 2*time.Second, cfg.Service.RequestTimeout.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.Service.RetryBaseDelay.Std())
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"service": {
			"baseUrl": "https://file.example.com",
			"resources": {"inventory": "/inv"}
		}
	}`)
	t.Setenv("UPTOP_BASE_URL", "https://env.example.com")
	t.Setenv("UPTOP_CACHE_TTL", "1m")
	t.Setenv("UPTOP_MAX_ATTEMPTS", "5")
	t.Setenv("UPTOP_LOG_LEVEL", "DEBUG")
	t.Setenv("UPTOP_DURABLE_BACKEND", "nats")
	t.Setenv("UPTOP_NATS_URL", "nats://127.0.0.1:4222")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Service.BaseURL)
	assert.Equal(t, time.Minute, cfg.Service.CacheTTL.Std())
	assert.Equal(t, 5, cfg.Service.MaxAttempts)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DurableNATS, cfg.Durable.Backend)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Durable.NATSURL)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no resources", `{"service": {}}`},
		{"bad duration", `{"service": {"resources": {"a": "https://x"}, "cacheTtl": "soon"}}`},
		{"unknown backend", `{"service": {"resources": {"a": "https://x"}}, "durable": {"backend": "tape"}}`},
		{"file backend without dir", `{"service": {"resources": {"a": "https://x"}}, "durable": {"backend": "file"}}`},
		{"nats backend without url", `{"service": {"resources": {"a": "https://x"}}, "durable": {"backend": "nats"}}`},
		{"bad log level", `{"service": {"resources": {"a": "https://x"}}, "logLevel": "loud"}`},
		{"not json", `resources=inventory`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, errors.IsFatal(err))
}

func TestServiceOptions(t *testing.T) {
	cfg := Default()
	cfg.Service.BaseURL = "https://api.example.com"
	cfg.Service.Resources = map[string]string{"inventory": "/inv"}

	sc := cfg.ServiceOptions()
	assert.Equal(t, "https://api.example.com", sc.BaseURL)
	assert.Equal(t, 5*time.Minute, sc.CacheTTL)
	assert.Equal(t, 3, sc.MaxAttempts)
	require.NoError(t, sc.Validate())
}

func TestOpenDurableBackends(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	d, err := cfg.OpenDurable(ctx)
	require.NoError(t, err)
	assert.Nil(t, d, "none backend yields no durable cache")

	dir := t.TempDir()
	cfg.Durable = DurableConfig{Backend: DurableFile, Dir: filepath.Join(dir, "cache")}
	d, err = cfg.OpenDurable(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.NoError(t, d.Close())

	cfg.Durable = DurableConfig{Backend: DurableSQLite, Path: filepath.Join(dir, "cache.db")}
	d, err = cfg.OpenDurable(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.NoError(t, d.Close())
}

func TestPreferencesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	prefs := DefaultPreferences()
	prefs.Criteria = prefs.Criteria.WithStatus("pending").WithSort(record.FieldTotalValue, pipeline.SortAscending)
	prefs.ItemsPerPage = 25
	prefs.Theme = "dark"
	require.NoError(t, SavePreferences(path, prefs))

	got, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, prefs, got)
}

func TestPreferencesMissingFileYieldsDefaults(t *testing.T) {
	got, err := LoadPreferences(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), got)
}

func TestPreferencesPartialFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme": "dark"}`), 0o644))

	got, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, DefaultPreferences().ChartType, got.ChartType)
	assert.Equal(t, DefaultPreferences().ItemsPerPage, got.ItemsPerPage)
}

func TestPreferencesCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := LoadPreferences(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultPreferences(), got)
}
