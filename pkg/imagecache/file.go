package imagecache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileLoader confirms images by checking they exist and are regular files
// under a root directory. It does not decode pixels; surfaces that need
// bytes read them lazily once the source is warm.
type FileLoader struct {
	Root string
}

// Load implements Loader.
func (l FileLoader) Load(ctx context.Context, src string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := src
	if l.Root != "" && !filepath.IsAbs(src) {
		path = filepath.Join(l.Root, src)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("image source %s is a directory", path)
	}
	return nil
}

// Ensure FileLoader implements Loader.
var _ Loader = FileLoader{}
