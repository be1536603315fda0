package config

import (
	"fmt"
	"path/filepath"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// ResourceFS opens the host directory Dir as a filesystem. Resource paths
// are relative to it.
func (c AppConfig) ResourceFS() (hackpadfs.FS, error) {
	abs, err := filepath.Abs(c.dir)
	if err != nil {
		return nil, fmt.Errorf("resolve resource dir %s: %w", c.dir, err)
	}

	fs := osfs.NewFS()
	root, err := fs.FromOSPath(abs)
	if err != nil {
		return nil, fmt.Errorf("resource dir %s: %w", abs, err)
	}
	sub, err := fs.Sub(root)
	if err != nil {
		return nil, fmt.Errorf("open resource dir %s: %w", abs, err)
	}
	return sub, nil
}
