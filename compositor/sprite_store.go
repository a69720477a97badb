package compositor

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
)

// SpriteStore loads pre-rendered, background-isolated plant sprites by
// reference. The store is read-only from the pipeline's perspective.
type SpriteStore interface {
	// Load returns the decoded sprite for the given asset reference.
	// A missing asset returns an error unwrapping to ErrAssetNotFound.
	Load(ref string) (image.Image, error)
}

// FSSpriteStore serves sprites from a directory tree on the local
// filesystem. References are paths relative to the root.
//
// Thread Safety: FSSpriteStore is safe for concurrent use; reads share no
// mutable state.
type FSSpriteStore struct {
	root string
}

// NewFSSpriteStore creates a filesystem-backed sprite store rooted at dir.
func NewFSSpriteStore(dir string) (*FSSpriteStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("compositor: sprite directory cannot be empty")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("compositor: sprite directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("compositor: sprite path %q is not a directory", dir)
	}
	return &FSSpriteStore{root: dir}, nil
}

// Load reads and decodes the sprite at ref, relative to the store root.
func (s *FSSpriteStore) Load(ref string) (image.Image, error) {
	if ref == "" {
		return nil, &AssetNotFoundError{Ref: ref}
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &AssetNotFoundError{Ref: ref, Err: err}
		}
		return nil, fmt.Errorf("compositor: failed to read sprite %q: %w", ref, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &AssetNotFoundError{Ref: ref, Err: err}
	}
	return img, nil
}

var _ SpriteStore = (*FSSpriteStore)(nil)
