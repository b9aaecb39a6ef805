package ports

import (
	"context"

	"amesdash/domain/housing"
)

// DatasetSource provides the housing frame to every surface (dashboard,
// API, report CLI). Implementations own parsing and the fixed load-time
// transforms; callers must treat the returned frame as read-only.
type DatasetSource interface {
	// Load reads the dataset. A missing file yields core.ErrDatasetNotFound.
	Load(ctx context.Context) (*housing.Frame, error)
}
