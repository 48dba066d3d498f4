package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quiz-runner/internal/docparse"
	"quiz-runner/internal/domain"
)

// NewCheckCmd builds the subcommand that validates a quiz document and
// prints every diagnostic found, not just the first.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <document>",
		Short: "Validate a quiz document and report all problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := docparse.ParseDocument(string(data))
			if err != nil {
				printDiagnostics(cmd, err)
				return fmt.Errorf("%s is not a valid quiz document", args[0])
			}
			cmd.Printf("OK: %q by %s, %d questions\n",
				doc.Metadata.Name, orUnknown(doc.Metadata.Author), len(doc.Questions))
			return nil
		},
	}
}

// printDiagnostics renders ingestion errors for the document author: one
// line per validation problem, parse failures verbatim.
func printDiagnostics(cmd *cobra.Command, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		cmd.PrintErrln("invalid quiz document:")
		for _, p := range verr.Problems {
			cmd.PrintErrf("  - %s\n", p)
		}
		return
	}
	cmd.PrintErrln(err)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown author"
	}
	return s
}
