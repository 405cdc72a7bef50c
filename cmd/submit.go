package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/finlync/taxgate/internal/validation"
)

var submitFile string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a document to the portal",
	Long: `Validates the document locally and submits it to the tax authority portal.
On success the authority-assigned reference number and acknowledgment
metadata are printed. Validation failures are reported without any
network call.`,
	Example: `  taxgate submit -f invoice.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(submitFile)
		if err != nil {
			return err
		}

		gw, err := factory.GetGateway()
		if err != nil {
			return err
		}

		result, err := gw.Submit(cmd.Context(), doc)
		if err != nil {
			var validationErr *validation.Error
			if errors.As(err, &validationErr) {
				log.Error().Msgf("%s document failed validation:", redCross)
				for _, msg := range validationErr.Errors {
					log.Error().Msgf("  - %s", msg)
				}
				return BeQuietError{}
			}
			return err
		}

		log.Info().Msgf("%s document accepted by the portal", greenCheck)
		fmt.Printf("reference number:      %s\n", result.ReferenceNumber)
		fmt.Printf("acknowledgment number: %s\n", result.AcknowledgmentNumber)
		fmt.Printf("acknowledgment date:   %s\n", result.AcknowledgmentDate)
		if result.SignedPayload != "" {
			fmt.Printf("signed payload:        %s\n", truncate(result.SignedPayload, 64))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVarP(&submitFile, "file", "f", "", "The document file to submit (YAML or JSON)")
	_ = submitCmd.MarkFlagRequired("file")
}
