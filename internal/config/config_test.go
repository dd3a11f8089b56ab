package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "treehash.yaml", `algorithm: sha3-256
include: [data, docs/readme.md]
exclude:
  - data/tmp
exclude_globs: "**/*.bak, **/.DS_Store"
log_level: a
log_format: json
no_linked_dirs: true
max_rate: 1048576
audit_log: .treehash-audit.jsonl
`)
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, cfg.Algorithm)
	assert.Equal(t, "sha3-256", *cfg.Algorithm)
	assert.Equal(t, []string{"data", "docs/readme.md"}, cfg.Include)
	assert.Equal(t, []string{"data/tmp"}, cfg.Exclude)
	assert.Equal(t, "**/*.bak, **/.DS_Store", *cfg.ExcludeGlobs)
	assert.Equal(t, "a", *cfg.LogLevel)
	assert.Equal(t, "json", *cfg.LogFormat)
	assert.True(t, *cfg.NoLinkedDirs)
	assert.Nil(t, cfg.NoLinkedFiles)
	assert.Equal(t, int64(1<<20), *cfg.MaxRate)
	assert.Equal(t, ".treehash-audit.jsonl", *cfg.AuditLog)
}

func TestLoadFile_Empty(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "treehash.yml", "")
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg)
}

func TestLoadFile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "hmac_key: secret\n"},
		{"bad algorithm", "algorithm: md5\n"},
		{"bad level", "log_level: verbose\n"},
		{"bad format", "log_format: xml\n"},
		{"negative rate", "max_rate: -1\n"},
		{"not yaml", "include: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeTemp(t, t.TempDir(), "treehash.yml", tt.body)
			_, err := LoadFile(p)
			assert.Error(t, err)
		})
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "treehash.yaml", "log_level: e\n")
	writeTemp(t, dir, ".treehash.yaml", "log_level: a\n")
	cfg, err := LoadLocal(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.LogLevel)
	assert.Equal(t, "a", *cfg.LogLevel)
}

func TestLoadLocal_NoConfig(t *testing.T) {
	_, err := LoadLocal(t.TempDir())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "treehash")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	writeTemp(t, cfgDir, "config.yml", "no_color: true\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	require.NoError(t, err)
	require.NotNil(t, cfg.NoColor)
	assert.True(t, *cfg.NoColor)
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := LoadGlobal()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGlobalPath_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	p, err := GlobalPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "treehash", "config.yml"), p)
}
