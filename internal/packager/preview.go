package packager

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"

	"github.com/phrazzld/ankigen/internal/domain"
)

//go:embed templates/preview.html.tmpl
var previewTemplateSrc string

var previewTemplate = template.Must(template.New("preview").Parse(previewTemplateSrc))

// Preview writes all cards into one static HTML document for inspection in
// a browser, without importing anything into Anki.
type Preview struct {
	logger       *slog.Logger
	deckName     string
	templateName string
}

// NewPreview creates an HTML preview packager.
func NewPreview(logger *slog.Logger, deckName, templateName string) (*Preview, error) {
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
		return nil, fmt.Errorf("unknown card template set %q", templateName)
	}
	return &Preview{logger: logger, deckName: deckName, templateName: templateName}, nil
}

// previewCard is one rendered card in the preview document.
type previewCard struct {
	Front template.HTML
	Back  template.HTML
}

// previewData is the template payload for the preview document.
type previewData struct {
	DeckName string
	Cards    []previewCard
}

// Package renders the cards into a single HTML file at dest. Cards that
// fail to render are skipped with a warning.
func (p *Preview) Package(ctx context.Context, cards []domain.Card, dest string) error {
	if len(cards) == 0 {
		return ErrNoCardsToPackage
	}

	rendered := make([]previewCard, 0, len(cards))
	for _, card := range cards {
		front, back, err := renderFaces(p.templateName, card)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping card that failed to render",
				"card_id", card.ID.String(),
				"error", err)
			continue
		}
		// The faces are output of a html/template render and are safe to
		// embed unescaped.
		rendered = append(rendered, previewCard{
			Front: template.HTML(front),
			Back:  template.HTML(back),
		})
	}
	if len(rendered) == 0 {
		return fmt.Errorf("%w: every card failed to render", ErrNoCardsToPackage)
	}

	if err := ensureParentDir(dest); err != nil {
		return err
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create preview file: %w", err)
	}
	defer out.Close()

	if err := previewTemplate.Execute(out, previewData{
		DeckName: p.deckName,
		Cards:    rendered,
	}); err != nil {
		return fmt.Errorf("render preview document: %w", err)
	}

	p.logger.InfoContext(ctx, "wrote HTML preview",
		"dest", dest,
		"deck", p.deckName,
		"cards", len(rendered))
	return out.Close()
}
