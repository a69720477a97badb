package imagegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentStore persists generated and composited images under a root
// directory with collision-free names.
type ContentStore struct {
	root string
	now  func() time.Time
}

// NewContentStore creates the store, making the root directory if needed.
func NewContentStore(root string) (*ContentStore, error) {
	if root == "" {
		return nil, fmt.Errorf("imagegen: content store root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("imagegen: failed to create content store root %q: %w", root, err)
	}
	return &ContentStore{root: root, now: time.Now}, nil
}

// Save writes data under a name of the form
// {subject}-{variant}-{timestamp}-{random}.{ext} and returns the full
// path. Subject and variant are sanitized to filesystem-safe slugs.
func (s *ContentStore) Save(subject, variant string, data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("imagegen: refusing to save empty content")
	}

	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "png"
	}

	name := fmt.Sprintf("%s-%s-%d-%s.%s",
		sanitizeSlug(subject),
		sanitizeSlug(variant),
		s.now().Unix(),
		uuid.NewString()[:8],
		ext,
	)

	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("imagegen: failed to write %q: %w", path, err)
	}
	return path, nil
}

// Root returns the store's base directory.
func (s *ContentStore) Root() string { return s.root }

// sanitizeSlug lowercases and strips anything that is not alphanumeric or
// a hyphen, collapsing runs of separators.
func sanitizeSlug(in string) string {
	if in == "" {
		return "unnamed"
	}
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(in) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "unnamed"
	}
	return out
}
