package source

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/pointscape/pkg/dataset"
)

// FileSource reads a dataset from a pipeline-produced JSON file
// (embeddings_image.json / embeddings_text.json layout).
type FileSource struct {
	Path string
}

// NewFileSource creates a source reading from path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", s.Path, err)
	}
	d, err := dataset.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", s.Path, err)
	}
	return d, nil
}

// Ensure FileSource implements Source.
var _ Source = (*FileSource)(nil)
