package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	ferrors "github.com/matzehuels/formation/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stage.Rows != 10 || cfg.Stage.Cols != 15 || cfg.Transition.Duration.Duration != 100*time.Millisecond {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadPartial(t *testing.T) {
	path := writeConfig(t, `
[stage]
rows = 8

[transition]
duration = "250ms"

[serve]
redis_addr = "localhost:6379"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stage.Rows != 8 {
		t.Errorf("Stage.Rows = %d, want 8", cfg.Stage.Rows)
	}
	if cfg.Stage.Cols != 15 {
		t.Errorf("Stage.Cols = %d, want default 15", cfg.Stage.Cols)
	}
	if cfg.Transition.Duration.Duration != 250*time.Millisecond {
		t.Errorf("Duration = %v, want 250ms", cfg.Transition.Duration)
	}
	if cfg.Transition.FPS != 60 {
		t.Errorf("FPS = %d, want default 60", cfg.Transition.FPS)
	}
	if cfg.Serve.Addr != ":8080" || cfg.Serve.RedisAddr != "localhost:6379" {
		t.Errorf("Serve = %+v", cfg.Serve)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `[stage`},
		{"unknown key", "[stage]\ncolumns = 3\n"},
		{"bad stage", "[stage]\nrows = 99\n"},
		{"bad duration", "[transition]\nduration = \"soon\"\n"},
		{"zero fps", "[transition]\nfps = 0\n"},
		{"bad color", "[palette]\ncolors = [\"red\"]\n"},
		{"empty palette", "[palette]\ncolors = []\n"},
		{"bad cell width", "[render]\ncell_width = -1.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !ferrors.Is(err, ferrors.ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", ferrors.GetCode(err), ferrors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Transition.Duration = Duration{300 * time.Millisecond}
	cfg.Render.ShowGrid = false

	if err := cfg.Write(path, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := cfg.Write(path, false); err == nil {
		t.Error("Write without overwrite should refuse an existing file")
	}
	if err := cfg.Write(path, true); err != nil {
		t.Errorf("Write with overwrite: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Transition.Duration.Duration != 300*time.Millisecond || got.Render.ShowGrid {
		t.Errorf("round trip = %+v", got)
	}
}

func TestPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")

	path, err := Path()
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", appName, "config.toml"); path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
}

func TestPathDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", appName); dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}
