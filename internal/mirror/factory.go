package mirror

import (
	"context"
	"fmt"

	"snapcheck/internal/config"
)

// NewMirrorFromConfig creates a Mirror based on the mirror config type.
// Returns (nil, nil) when mirroring is disabled.
func NewMirrorFromConfig(ctx context.Context, cfg config.MirrorConfig) (Mirror, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryMirror(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem mirror requires fs_root to be set")
		}
		return NewFileSystemMirror(cfg.FSRoot)
	case "s3":
		return NewS3Mirror(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown mirror type: %s", cfg.Type)
	}
}
