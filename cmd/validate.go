package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/finlync/taxgate/internal/validation"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a document locally without submitting it",
	Long: `Runs the same pre-flight checks 'submit' applies, without touching the
network. Useful to verify a document before the real submission.`,
	Example: `  taxgate validate -f invoice.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(validateFile)
		if err != nil {
			return err
		}

		result := validation.ValidateDocument(doc)
		for _, warning := range result.Warnings {
			log.Warn().Msgf("%s %s", yellowWarn, warning)
		}
		if !result.IsValid() {
			log.Error().Msgf("%s document failed validation:", redCross)
			for _, msg := range result.Errors {
				log.Error().Msgf("  - %s", msg)
			}
			return BeQuietError{}
		}

		log.Info().Msgf("%s document is valid (%d warning(s))", greenCheck, len(result.Warnings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "The document file to validate (YAML or JSON)")
	_ = validateCmd.MarkFlagRequired("file")
}
