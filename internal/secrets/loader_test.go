package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name      string
		src       Source
		expect    string
		expectErr string
	}{
		{name: "inline", src: Source{Name: "api key", Value: " inline "}, expect: "inline"},
		{name: "file wins", src: Source{Name: "api key", Value: "inline", File: keyFile}, expect: "from-file"},
		{name: "missing file", src: Source{Name: "api key", File: filepath.Join(dir, "nope")}, expectErr: "reading api key from file"},
		{name: "empty file", src: Source{Name: "api key", File: emptyFile}, expectErr: "is empty"},
		{name: "not configured", src: Source{}, expectErr: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.expectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	got, err := LoadOptional(Source{Name: "hh token"})
	if err != nil || got != "" {
		t.Fatalf("expected empty secret without error, got %q %v", got, err)
	}

	if _, err := LoadOptional(Source{Name: "hh token", File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected error for a configured but missing file")
	}

	got, err = LoadOptional(Source{Name: "hh token", Value: "abc"})
	if err != nil || got != "abc" {
		t.Fatalf("expected inline token, got %q %v", got, err)
	}
}
