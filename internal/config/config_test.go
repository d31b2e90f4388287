package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MEDIA_DIR", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./media", cfg.MediaDir)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MEDIA_DIR", "/var/lib/kvartal/media")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/var/lib/kvartal/media", cfg.MediaDir)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	_, _, err := Load()
	assert.Error(t, err)
}
