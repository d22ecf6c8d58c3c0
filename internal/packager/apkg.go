package packager

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/ankigen/internal/domain"
)

// APKG writes cards as an importable Anki package: a zip archive holding a
// collection.anki2 database and a media manifest.
type APKG struct {
	logger       *slog.Logger
	deckName     string
	templateName string
}

// NewAPKG creates an APKG packager for the named deck. templateName selects
// the embedded card template set; empty means DefaultTemplate.
func NewAPKG(logger *slog.Logger, deckName, templateName string) (*APKG, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if deckName == "" {
		return nil, errors.New("deck name cannot be empty")
	}
	if templateName == "" {
		templateName = DefaultTemplate
	}
	if !IsValidTemplate(templateName) {
		return nil, fmt.Errorf("unknown card template set %q (available: %s)",
			templateName, strings.Join(ListTemplates(), ", "))
	}
	return &APKG{logger: logger, deckName: deckName, templateName: templateName}, nil
}

// Package renders the cards and writes the .apkg file to dest, creating
// missing directories. Cards that fail to render are skipped with a
// warning; the package is written as long as at least one card renders.
func (p *APKG) Package(ctx context.Context, cards []domain.Card, dest string) error {
	if len(cards) == 0 {
		return ErrNoCardsToPackage
	}

	notes := make([]ankiNote, 0, len(cards))
	for _, card := range cards {
		front, back, err := renderFaces(p.templateName, card)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping card that failed to render",
				"card_id", card.ID.String(),
				"error", err)
			continue
		}
		notes = append(notes, ankiNote{
			Front: front,
			Back:  back,
			Tags:  strings.Join(card.Content.Tags, " "),
		})
	}
	if len(notes) == 0 {
		return fmt.Errorf("%w: every card failed to render", ErrNoCardsToPackage)
	}

	if err := ensureParentDir(dest); err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "ankigen-apkg-*")
	if err != nil {
		return fmt.Errorf("create packaging workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	collectionPath := filepath.Join(workDir, "collection.anki2")
	if err := writeCollection(collectionPath, p.deckName, notes); err != nil {
		return err
	}

	if err := writeArchive(dest, collectionPath); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "wrote Anki package",
		"dest", dest,
		"deck", p.deckName,
		"cards", len(notes),
		"skipped", len(cards)-len(notes))
	return nil
}

// writeArchive zips the collection database and an empty media manifest
// into an .apkg file at dest.
func writeArchive(dest, collectionPath string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create package file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	collection, err := os.Open(collectionPath)
	if err != nil {
		return fmt.Errorf("open collection database: %w", err)
	}
	defer collection.Close()

	entry, err := zw.Create("collection.anki2")
	if err != nil {
		return fmt.Errorf("add collection to package: %w", err)
	}
	if _, err := io.Copy(entry, collection); err != nil {
		return fmt.Errorf("write collection to package: %w", err)
	}

	// No media files are generated; the manifest is required regardless.
	media, err := zw.Create("media")
	if err != nil {
		return fmt.Errorf("add media manifest to package: %w", err)
	}
	if _, err := media.Write([]byte("{}")); err != nil {
		return fmt.Errorf("write media manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize package: %w", err)
	}
	return out.Close()
}
