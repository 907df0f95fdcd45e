package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scribe/internal/config"
	"scribe/internal/errors"
)

// ValidateExportDir checks that dir is an acceptable export destination:
// no traversal sequences, and either the default exports directory, a
// configured allowed path, or anywhere when AllowUnsafePaths is set.
// The parent of the destination must not be a symlink.
func ValidateExportDir(dir, defaultDir string, cfg *config.Config) (string, error) {
	if dir == "" {
		dir = defaultDir
	}
	if strings.Contains(dir, "..") {
		return "", errors.NewInvalidRequest("export path must not contain directory traversal (..)")
	}

	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid export path: %v", err))
	}

	if info, err := os.Lstat(absDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", errors.NewInvalidRequest("export path must not be a symlink")
	}

	if cfg != nil && cfg.AllowUnsafePaths {
		return absDir, nil
	}

	absDefault, err := filepath.Abs(filepath.Clean(defaultDir))
	if err == nil && absDir == absDefault {
		return absDir, nil
	}

	if cfg != nil {
		for _, allowed := range cfg.AllowedPaths {
			if !filepath.IsAbs(allowed) {
				continue
			}
			if absDir == filepath.Clean(allowed) {
				return absDir, nil
			}
		}
	}

	return "", errors.NewInvalidRequest(
		"export path is outside the exports directory; add it to allowed_paths or set allow_unsafe_paths")
}
