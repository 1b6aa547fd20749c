package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// LoadShot reads a single shot submission request.
	LoadShot(ctx context.Context, path string) (*Shot, error)

	// LoadDescription reads the render description from one or more files or
	// directories. Passes are returned in file order, then source order.
	LoadDescription(ctx context.Context, paths ...string) (*Description, error)

	// LoadScene reads the renderer scene snapshot from one or more files or
	// directories.
	LoadScene(ctx context.Context, paths ...string) (*Scene, error)
}
