package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qgridsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[Server]
Addr = "127.0.0.1:8080"
ShutdownTimeout = "2s"
WriteTimeout = "1m30s"
AllowedOrigins = ["http://localhost:3000"]

[Engine]
MaxQubits = 5

[Log]
Level = "debug"
Format = "json"
`)

	cfg := DefaultConfig
	require.NoError(t, LoadConfig(path, &cfg))

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, Duration(2*time.Second), cfg.Server.ShutdownTimeout)
	assert.Equal(t, Duration(90*time.Second), cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5, cfg.Engine.MaxQubits)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultConfig.Server.ReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultConfig.Server.MaxBodyBytes, cfg.Server.MaxBodyBytes)
	assert.Equal(t, []string{"*"}, DefaultConfig.Server.AllowedOrigins)
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := writeConfig(t, "[Engine]\nMaxQubit = 5\n")

	cfg := DefaultConfig
	err := LoadConfig(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxQubit")
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := DefaultConfig
	assert.ErrorIs(t, LoadConfig(filepath.Join(t.TempDir(), "nope.toml"), &cfg), os.ErrNotExist)
}

func TestLoadConfigBadDuration(t *testing.T) {
	path := writeConfig(t, "[Server]\nReadTimeout = \"soon\"\n")

	cfg := DefaultConfig
	assert.Error(t, LoadConfig(path, &cfg))
}

func TestDuration(t *testing.T) {
	text, err := Duration(1500 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))

	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("250ms")))
	assert.Equal(t, Duration(250*time.Millisecond), d)
	assert.Error(t, d.UnmarshalText([]byte("10")))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig
	assert.NoError(t, cfg.Validate())

	tests := []struct {
		maxQubits int
		ok        bool
	}{
		{0, false},
		{1, true},
		{MaxRegisterQubits, true},
		{MaxRegisterQubits + 1, false},
		{64, false},
	}
	for _, tt := range tests {
		cfg := DefaultConfig
		cfg.Engine.MaxQubits = tt.maxQubits
		if tt.ok {
			assert.NoError(t, cfg.Validate(), "MaxQubits=%d", tt.maxQubits)
		} else {
			assert.ErrorContains(t, cfg.Validate(), "MaxQubits", "MaxQubits=%d", tt.maxQubits)
		}
	}

	cfg = DefaultConfig
	cfg.Server.MaxBodyBytes = 0
	assert.ErrorContains(t, cfg.Validate(), "MaxBodyBytes")
}

func TestDumpConfigLoadsBack(t *testing.T) {
	want := DefaultConfig
	want.Engine.MaxQubits = 6
	want.Log.Compress = true

	data, err := DumpConfig(&want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Engine]")
	assert.Contains(t, string(data), "MaxQubits = 6")
	assert.Contains(t, string(data), `ShutdownTimeout = "5s"`)

	var got Config
	require.NoError(t, LoadConfig(writeConfig(t, string(data)), &got))
	assert.Equal(t, want, got)
}

func TestNewLoggerFromConfig(t *testing.T) {
	for _, format := range []string{"text", "json", "JSON", ""} {
		log, err := NewLoggerFromConfig(LogConfig{Level: "warn", Format: format})
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, log)
	}

	_, err := NewLoggerFromConfig(LogConfig{Level: "loud", Format: "text"})
	assert.ErrorContains(t, err, "log level")

	_, err = NewLoggerFromConfig(LogConfig{Level: "info", Format: "xml"})
	assert.ErrorContains(t, err, "unknown log format")
}
