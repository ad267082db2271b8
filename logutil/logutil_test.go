package logutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/marquee/config"
)

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marquee.log")
	log, err := New("test", config.Log{Level: "warn", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Infow("hidden")
	log.Warnw("shown", "key", 7)
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"msg":"shown"`)
	assert.Contains(t, string(data), `"logger":"test"`)
	assert.Contains(t, string(data), `"key":7`)
}

func TestNewBadLevel(t *testing.T) {
	_, err := New("test", config.Log{Level: "loud"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Errorw("ignored", "n", 1) })
}
