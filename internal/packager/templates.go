package packager

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"sort"

	"github.com/phrazzld/ankigen/internal/domain"
)

//go:embed templates
var templatesFS embed.FS

// DefaultTemplate is the template set used when none is requested.
const DefaultTemplate = "basic"

// templateSets maps template set name to its parsed front/back templates.
// Built once at package initialization from the embedded assets.
var templateSets = mustLoadTemplateSets()

type templateSet struct {
	front *template.Template
	back  *template.Template
}

func mustLoadTemplateSets() map[string]templateSet {
	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("read embedded card templates: %v", err))
	}

	sets := make(map[string]templateSet, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		front := template.Must(template.ParseFS(templatesFS, "templates/"+name+"/front.html.tmpl"))
		back := template.Must(template.ParseFS(templatesFS, "templates/"+name+"/back.html.tmpl"))
		sets[name] = templateSet{front: front, back: back}
	}
	return sets
}

// ListTemplates returns the available card template set names, sorted.
func ListTemplates() []string {
	names := make([]string, 0, len(templateSets))
	for name := range templateSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsValidTemplate reports whether the named template set exists.
func IsValidTemplate(name string) bool {
	_, ok := templateSets[name]
	return ok
}

// renderFaces renders the front and back HTML of one card with the named
// template set.
func renderFaces(templateName string, card domain.Card) (front, back string, err error) {
	set, ok := templateSets[templateName]
	if !ok {
		return "", "", fmt.Errorf("unknown card template set %q", templateName)
	}

	var frontBuf bytes.Buffer
	if err := set.front.Execute(&frontBuf, card); err != nil {
		return "", "", fmt.Errorf("render card front: %w", err)
	}

	var backBuf bytes.Buffer
	if err := set.back.Execute(&backBuf, card); err != nil {
		return "", "", fmt.Errorf("render card back: %w", err)
	}

	return frontBuf.String(), backBuf.String(), nil
}
