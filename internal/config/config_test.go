package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	interrors "github.com/addrnav-dev/addrnav/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := writeConfig(t, `{"name": "console"}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "console" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Address != DefaultAddress {
		t.Errorf("Address = %q, want default %q", cfg.Address, DefaultAddress)
	}
	if cfg.Static.Prefix != DefaultStaticPrefix {
		t.Errorf("Static.Prefix = %q, want default %q", cfg.Static.Prefix, DefaultStaticPrefix)
	}
	if cfg.SessionTTL() != DefaultSessionTTL {
		t.Errorf("SessionTTL = %v, want default", cfg.SessionTTL())
	}
}

func TestLoadNormalizesBasePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/console/", "/console"},
		{"console", "/console"},
		{"/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		dir := writeConfig(t, `{"basePath": "`+tt.in+`"}`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load(%q): %v", tt.in, err)
		}
		if cfg.BasePath != tt.want {
			t.Errorf("BasePath for %q = %q, want %q", tt.in, cfg.BasePath, tt.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	var coded *interrors.Error
	if !errors.As(err, &coded) || coded.Code != "A101" {
		t.Fatalf("err = %v, want coded A101", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := writeConfig(t, `{"name":`)
	_, err := Load(dir)
	var coded *interrors.Error
	if !errors.As(err, &coded) || coded.Code != "A103" {
		t.Fatalf("err = %v, want coded A103", err)
	}
}

func TestValidate(t *testing.T) {
	dir := writeConfig(t, `{"session": {"ttl": "banana"}}`)
	if _, err := Load(dir); err == nil {
		t.Error("expected error for invalid ttl")
	}

	dir = writeConfig(t, `{"assets": {"s3": {"prefix": "dist/"}}}`)
	if _, err := Load(dir); err == nil {
		t.Error("expected error for s3 prefix without bucket")
	}

	dir = writeConfig(t, `{"session": {"ttl": "45m"}}`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL() != 45*time.Minute {
		t.Errorf("SessionTTL = %v, want 45m", cfg.SessionTTL())
	}
}

func TestSaveTo(t *testing.T) {
	cfg := New()
	cfg.Name = "console"
	path := filepath.Join(t.TempDir(), ConfigFileName)

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Name != "console" {
		t.Errorf("round trip Name = %q", loaded.Name)
	}
	if loaded.Path() != path {
		t.Errorf("Path() = %q, want %q", loaded.Path(), path)
	}
}
