package cli

import (
	"fmt"
	"path/filepath"

	"github.com/phrazzld/ankigen/internal/service"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	topic    string
	numCards int
	model    string
	output   string
	deckName string
	session  string
	template string
	workflow string
	domain   string
	preview  bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a flashcard deck for a topic",
	Example: `  ankigen generate --topic "German prepositions" --num-cards 15
  ankigen generate --topic "Python Basics" --workflow module --domain code
  ankigen generate --topic "Linear Algebra" --preview --output la.html`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		deps, err := buildDependencies(ctx, generateFlags.model)
		if err != nil {
			return err
		}
		defer deps.close()

		out := service.OutputConfig{Kind: service.OutputAPKG}
		if generateFlags.preview {
			out.Kind = service.OutputPreview
		}
		if generateFlags.output != "" {
			out.Dir = filepath.Dir(generateFlags.output)
			out.Filename = filepath.Base(generateFlags.output)
		}

		result, err := deps.svc.Generate(ctx, service.GenerationRequest{
			Topic:     generateFlags.topic,
			NumCards:  generateFlags.numCards,
			Workflow:  generateFlags.workflow,
			DeckName:  generateFlags.deckName,
			SessionID: generateFlags.session,
			Domain:    generateFlags.domain,
			Template:  generateFlags.template,
		}, out)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Generated %d cards for %q\n", len(result.Cards), result.DeckName)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", result.OutputPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Session: %s\n", result.SessionID)
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateFlags.topic, "topic", "t", "", "topic to generate cards for (required)")
	f.IntVarP(&generateFlags.numCards, "num-cards", "n", 10, "number of cards to generate")
	f.StringVar(&generateFlags.model, "model", "", "override the configured Gemini model")
	f.StringVarP(&generateFlags.output, "output", "o", "", "output file path (default derived from deck name)")
	f.StringVar(&generateFlags.deckName, "deck-name", "", "deck name (default \"Generated Flashcards: <topic>\")")
	f.StringVar(&generateFlags.session, "session", "", "session id for checkpoint resumption")
	f.StringVar(&generateFlags.template, "template", "", "card template set (see 'ankigen templates')")
	f.StringVarP(&generateFlags.workflow, "workflow", "w", service.WorkflowTopic,
		"generation workflow: topic, module, subject, or iterative")
	f.StringVarP(&generateFlags.domain, "domain", "d", "", "few-shot example domain (see 'ankigen domains')")
	f.BoolVar(&generateFlags.preview, "preview", false, "write an HTML preview instead of an .apkg deck")

	_ = generateCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(generateCmd)
}
