package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/passgrid/internal/site"
)

// prepareOutputs creates the image and IFD directories of a layer and links
// each source file into both. Links that already exist are kept.
func prepareOutputs(lp *site.LayerPaths, sources ...string) error {
	dirs := []string{filepath.Dir(lp.Image), filepath.Dir(lp.IFD)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		for _, src := range sources {
			if src == "" {
				continue
			}
			link := filepath.Join(dir, filepath.Base(src))
			if err := os.Symlink(src, link); err != nil && !errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("linking %s: %w", filepath.Base(src), err)
			}
		}
	}
	return nil
}
