package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettingsAreUsable(t *testing.T) {
	s := Default()
	assert.Equal(t, "none", s.Theme)
	assert.NotEmpty(t, s.HistoryFile)
	assert.Greater(t, s.HistoryLimit, 0)
	assert.Equal(t, uint(0), s.CheckInterval)
}

func TestLoadFallsBackToDefaultWithoutConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	s, err := Load()
	// Load always returns a usable Settings even when it also returns an
	// error describing why the file wasn't found/parsed.
	assert.NotNil(t, s)
	_ = err
}
