package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "password")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("EDUBRIDGE_TEST_PASSWORD", " from-env ")

	tests := []struct {
		name    string
		src     Source
		expect  string
		wantErr bool
	}{
		{name: "file wins", src: Source{File: file, Env: "EDUBRIDGE_TEST_PASSWORD", Value: "inline"}, expect: "from-file"},
		{name: "env before value", src: Source{Env: "EDUBRIDGE_TEST_PASSWORD", Value: "inline"}, expect: "from-env"},
		{name: "unset env falls through", src: Source{Env: "EDUBRIDGE_TEST_UNSET", Value: " inline "}, expect: "inline"},
		{name: "empty file", src: Source{File: empty, Value: "inline"}, wantErr: true},
		{name: "missing file", src: Source{File: filepath.Join(dir, "missing")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
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

func TestLoadNotConfigured(t *testing.T) {
	_, err := Load(Source{Name: "password"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if err.Error() != "password is not configured" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
