package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/thoreinstein/bashbuiltins/internal/paths"
)

// isolate points the XDG directories at a temp dir and resets viper.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	paths.Reload()
	t.Cleanup(paths.Reload)
	viper.Reset()
	t.Cleanup(viper.Reset)
	Init()
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInit(t *testing.T) {
	dir := isolate(t)

	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if got := viper.GetInt("nameref_max_depth"); got != 8 {
		t.Errorf("expected nameref_max_depth default 8, got %d", got)
	}
	want := filepath.Join(dir, "data", "bbhost", "builtins")
	if got := viper.GetStringSlice("manifest_dirs"); len(got) != 1 || got[0] != want {
		t.Errorf("manifest_dirs = %v, want [%s]", got, want)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.ShellName != "bbhost" {
		t.Errorf("ShellName = %q, want bbhost", cfg.ShellName)
	}
	if cfg.Log != (Log{Level: "warn", Format: "text", Color: "auto"}) {
		t.Errorf("Log = %+v, want warn/text/auto", cfg.Log)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
shell_name: bash
nameref_max_depth: 16
random_seed: 42
manifest_dirs:
  - /opt/builtins
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ShellName != "bash" || cfg.NameRefMaxDepth != 16 || cfg.RandomSeed != 42 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.ManifestDirs) != 1 || cfg.ManifestDirs[0] != "/opt/builtins" {
		t.Errorf("ManifestDirs = %v", cfg.ManifestDirs)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_DefaultLocation(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, "config", "bbhost"), "shell_name: fromxdg\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ShellName != "fromxdg" {
		t.Errorf("ShellName = %q, want fromxdg", cfg.ShellName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("BBHOST_SHELL_NAME", "envshell")
	t.Setenv("BBHOST_LOG_LEVEL", "error")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ShellName != "envshell" {
		t.Errorf("ShellName = %q, want envshell", cfg.ShellName)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	dir := isolate(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, dir, "manifest_dirs: [\"~/builtins\"]\nstate_file: ~/state.cbor\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ManifestDirs[0] != filepath.Join(home, "builtins") {
		t.Errorf("ManifestDirs[0] = %q", cfg.ManifestDirs[0])
	}
	if cfg.StateFile != filepath.Join(home, "state.cbor") {
		t.Errorf("StateFile = %q", cfg.StateFile)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	isolate(t)

	_, err := Load("/non/existent/path/config.yaml")
	if err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unsupported version",
			content: "version: 2\n",
			wantErr: "version: must be 1",
		},
		{
			name:    "nameref depth too large",
			content: "nameref_max_depth: 5000\n",
			wantErr: "nameref_max_depth: must be <= 1024",
		},
		{
			name:    "nameref depth zero",
			content: "nameref_max_depth: 0\n",
			wantErr: "nameref_max_depth: must be >= 1",
		},
		{
			name:    "unknown log level",
			content: "log:\n  level: loud\n",
			wantErr: "log.level: must be one of: trace, debug, info, warn, error",
		},
		{
			name:    "unknown color mode",
			content: "log:\n  color: rainbow\n",
			wantErr: "log.color: must be one of: auto, always, never",
		},
		{
			name:    "empty manifest dir",
			content: "manifest_dirs: [\"\"]\n",
			wantErr: "manifest_dirs[0]: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := writeConfig(t, dir, tt.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidField) {
				t.Errorf("Load() error should wrap ErrInvalidField: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Default(t *testing.T) {
	if errs := Validate(Default()); len(errs) != 0 {
		t.Errorf("Validate(Default()) = %v, want no errors", errs)
	}
	if errs := Validate(nil); len(errs) != 1 {
		t.Errorf("Validate(nil) = %v, want one error", errs)
	}
}
