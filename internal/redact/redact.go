// Package redact scrubs sensitive values from strings before they reach
// logs or error responses. The main concern here is the Gemini API key and
// local filesystem paths, both of which can leak through wrapped errors
// from the API client and the packagers.
package redact

import "regexp"

// Redaction placeholders.
const (
	KeyPlaceholder  = "[REDACTED_KEY]"
	PathPlaceholder = "[REDACTED_PATH]"
)

var (
	// Google API keys ("AIza" prefix) and generic key/token assignments.
	googleKeyRegex = regexp.MustCompile(`AIza[0-9A-Za-z_-]{30,}`)
	apiKeyRegex    = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// Bearer headers as forwarded by HTTP clients.
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{8,}`)

	// Absolute filesystem paths in wrapped I/O errors.
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex  = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)
)

var replacements = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	{googleKeyRegex, KeyPlaceholder},
	{apiKeyRegex, "${1}${2}" + KeyPlaceholder},
	{bearerRegex, KeyPlaceholder},
	{unixPathRegex, PathPlaceholder},
	{winPathRegex, PathPlaceholder},
}

// String redacts sensitive values from the input.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts an error's message. Returns "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
