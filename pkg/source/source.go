// Package source loads datasets from their storage backends: JSON files
// produced by the embedding pipeline, or a MongoDB collection for hosted
// deployments.
package source

import (
	"context"

	"github.com/matzehuels/pointscape/pkg/dataset"
)

// Source loads one dataset. Implementations finalize the dataset before
// returning it, so callers always receive derived attributes.
type Source interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}
