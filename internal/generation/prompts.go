package generation

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// promptSet holds all parsed prompt templates. Parsed once at package
// initialization; the templates are embedded assets, not configuration.
var promptSet = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// cardSchemaInstructions is the zero-shot replacement for example-driven
// prompting: it spells out the card record schema the model must emit.
// Only front_question_text and back_answer are required.
const cardSchemaInstructions = `The card JSON schema (omit optional fields you cannot fill meaningfully):
{
  "card_type": "Vocabulary | Concept | Code Snippet | Scenario (optional)",
  "topic": "main topic (optional)",
  "subtopic": "more specific subtopic (optional)",
  "title": "unique, descriptive card title (optional)",
  "difficulty": "easy | medium | hard (optional)",
  "tags": ["tag", ...] (optional),
  "front_question_text": "the main question text (REQUIRED)",
  "front_question_context": "when or where the question is relevant (optional)",
  "front_question_hint": "a helpful clue (optional)",
  "front_question_example": "an example like 'Das ist ein **Haus**.' (optional)",
  "front_question_code": "code to analyze or complete (optional)",
  "front_question_media": {"image": "url", "audio": "url"} (optional),
  "front_question_multiple_choice": [{"choice_letter": "A", "text": "...", "explanation": "..."}] (optional),
  "back_answer": "the concise correct answer (REQUIRED)",
  "back_explanation": "clarification or deeper reasoning (optional)",
  "back_collapsibles": [{"title": "...", "content": "..."}] (optional),
  "back_code_solution": "complete or correct code snippet (optional)",
  "back_related": ["related concept", ...] (optional),
  "back_mnemonics": "a memory aid or trick (optional)",
  "sources": ["source", ...] (optional)
}`

// renderPrompt executes the named embedded template with the given data.
func renderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := promptSet.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %q: %w", name, err)
	}
	return buf.String(), nil
}
