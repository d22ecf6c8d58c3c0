// Package examples loads per-domain example card records used for few-shot
// prompting. A missing domain or file is not an error: the synthesizer
// falls back to zero-shot schema instructions.
package examples

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phrazzld/ankigen/internal/domain"
	"gopkg.in/yaml.v3"
)

// domainsSubdir is where domain files live inside the examples directory.
const domainsSubdir = "domains"

// Loader reads example card records from YAML domain files under a base
// directory (examples/domains/<name>.yaml).
type Loader struct {
	logger *slog.Logger
	dir    string
}

// NewLoader creates a Loader rooted at the given examples directory.
func NewLoader(logger *slog.Logger, dir string) (*Loader, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if dir == "" {
		return nil, errors.New("examples directory cannot be empty")
	}
	return &Loader{logger: logger, dir: dir}, nil
}

// domainFile is the on-disk document shape. Records are kept loosely typed
// here so each one can be validated independently against the card schema.
type domainFile struct {
	Examples []map[string]any `yaml:"examples"`
}

// Load returns the example records for the named domain. An empty domain
// name, a missing file, or an unreadable file all yield a non-nil empty
// slice and no error (zero-shot fallback). Records that do not conform to
// the card schema are filtered out and logged.
func (l *Loader) Load(ctx context.Context, domainName string) []domain.CardContent {
	if domainName == "" {
		l.logger.InfoContext(ctx, "no domain specified, using zero-shot prompting")
		return []domain.CardContent{}
	}

	path := filepath.Join(l.dir, domainsSubdir, domainName+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.WarnContext(ctx, "domain file not readable, using zero-shot prompting",
			"domain", domainName,
			"path", path,
			"error", err)
		return []domain.CardContent{}
	}

	var doc domainFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		l.logger.ErrorContext(ctx, "failed to parse domain file, using zero-shot prompting",
			"domain", domainName,
			"error", err)
		return []domain.CardContent{}
	}

	validated := make([]domain.CardContent, 0, len(doc.Examples))
	for i, raw := range doc.Examples {
		content, err := decodeExample(raw)
		if err != nil {
			l.logger.WarnContext(ctx, "example failed validation, skipping",
				"domain", domainName,
				"index", i,
				"error", err)
			continue
		}
		validated = append(validated, content)
	}

	l.logger.InfoContext(ctx, "loaded domain examples",
		"domain", domainName,
		"valid", len(validated),
		"total", len(doc.Examples))
	return validated
}

// decodeExample converts one loosely typed record into CardContent via the
// card's JSON wire schema, then checks the required fields.
func decodeExample(raw map[string]any) (domain.CardContent, error) {
	blob, err := json.Marshal(raw)
	if err != nil {
		return domain.CardContent{}, err
	}

	var content domain.CardContent
	if err := json.Unmarshal(blob, &content); err != nil {
		return domain.CardContent{}, err
	}

	if content.Question == "" {
		return domain.CardContent{}, domain.ErrCardQuestionEmpty
	}
	if content.Answer == "" {
		return domain.CardContent{}, domain.ErrCardAnswerEmpty
	}
	return content, nil
}

// ListDomains returns the names of all available domain files, sorted.
// A missing domains directory yields an empty list.
func (l *Loader) ListDomains() []string {
	entries, err := os.ReadDir(filepath.Join(l.dir, domainsSubdir))
	if err != nil {
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}
