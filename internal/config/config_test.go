package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./data/items.db", cfg.ItemDBPath)
	assert.Equal(t, 64, cfg.ReportCacheSize)
	assert.Equal(t, 30*time.Second, cfg.WCLTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.HasClientCredentials())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WCL_CLIENT_ID", "id")
	t.Setenv("WCL_CLIENT_SECRET", "secret")
	t.Setenv("REPORT_CACHE_SIZE", "8")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.HasClientCredentials())
	assert.Equal(t, 8, cfg.ReportCacheSize)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad port", env: map[string]string{"PORT": "0"}},
		{name: "non numeric port", env: map[string]string{"PORT": "http"}},
		{name: "zero cache", env: map[string]string{"REPORT_CACHE_SIZE": "0"}},
		{name: "half credentials", env: map[string]string{"WCL_CLIENT_ID": "id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			require.Error(t, err)
		})
	}
}
