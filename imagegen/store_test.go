package imagegen

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func TestContentStoreSaveNaming(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewContentStore: %v", err)
	}
	store.now = func() time.Time { return time.Unix(1718000000, 0) }

	path, err := store.Save("Rose Garden", "day 166", []byte("png-bytes"), ".png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	name := filepath.Base(path)
	pattern := regexp.MustCompile(`^rose-garden-day-166-1718000000-[0-9a-f]{8}\.png$`)
	if !pattern.MatchString(name) {
		t.Errorf("file name %q does not match %s", name, pattern)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("stored content = %q", data)
	}
}

func TestContentStoreSaveUnique(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		path, err := store.Save("garden", "composite", []byte("x"), "png")
		if err != nil {
			t.Fatal(err)
		}
		if seen[path] {
			t.Fatalf("duplicate path %q", path)
		}
		seen[path] = true
	}
}

func TestContentStoreRejectsEmpty(t *testing.T) {
	store, err := NewContentStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("garden", "composite", nil, "png"); err == nil {
		t.Error("empty content accepted")
	}
}

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rose Garden", "rose-garden"},
		{"día   166!!", "d-a-166"},
		{"---", "unnamed"},
		{"", "unnamed"},
		{"already-clean", "already-clean"},
	}
	for _, tt := range tests {
		if got := sanitizeSlug(tt.in); got != tt.want {
			t.Errorf("sanitizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
