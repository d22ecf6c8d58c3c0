// Package cli defines the ankigen command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ankigen",
	Short: "AI-assisted Anki flashcard generator",
	Long: `ankigen generates Anki flashcards with the Gemini API.

It enumerates the concepts of a topic, synthesizes structured cards for
them, and packages the result as an importable .apkg deck or an HTML
preview. Set GOOGLE_API_KEY (or ANKIGEN_LLM_GEMINI_API_KEY) before
generating.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
