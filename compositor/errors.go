package compositor

import (
	"errors"
	"fmt"
)

// ErrAssetNotFound marks a sprite that could not be loaded from the store.
// Compositing logs and skips these; they never abort the whole composite.
var ErrAssetNotFound = errors.New("compositor: sprite asset not found")

// AssetNotFoundError wraps ErrAssetNotFound with the failing asset reference.
type AssetNotFoundError struct {
	Ref string
	Err error
}

func (e *AssetNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compositor: sprite asset %q not found: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("compositor: sprite asset %q not found", e.Ref)
}

func (e *AssetNotFoundError) Unwrap() error { return ErrAssetNotFound }

// CanvasSizeError reports a malformed sprite with degenerate dimensions.
// Unlike a missing asset this is fatal to the composite: a zero-sized
// sprite means the asset store is corrupt, not merely incomplete.
type CanvasSizeError struct {
	Ref    string
	Width  int
	Height int
}

func (e *CanvasSizeError) Error() string {
	return fmt.Sprintf("compositor: sprite %q has degenerate dimensions %dx%d",
		e.Ref, e.Width, e.Height)
}
