// Package packager turns generated cards into distributable artifacts: a
// real Anki package (.apkg) for import into Anki, or a standalone HTML
// preview document.
package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phrazzld/ankigen/internal/domain"
)

// ErrNoCardsToPackage is returned when packaging is attempted with an empty
// card list.
var ErrNoCardsToPackage = errors.New("no cards to package")

// Packager writes a set of cards to a destination file. Implementations
// create missing destination directories.
type Packager interface {
	Package(ctx context.Context, cards []domain.Card, dest string) error
}

// ensureParentDir creates the destination's parent directory when missing.
func ensureParentDir(dest string) error {
	dir := filepath.Dir(dest)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return nil
}
