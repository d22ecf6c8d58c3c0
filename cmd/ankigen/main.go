// Command ankigen generates Anki flashcard decks with the Gemini API.
package main

import (
	"os"

	"github.com/phrazzld/ankigen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Cobra already printed the error; the exit code is the signal.
		os.Exit(1)
	}
}
