package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cancelReason  string
	cancelRemarks string
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <reference-number>",
	Short: "Cancel a submitted document",
	Long: `Cancels a document on the portal by its authority-assigned reference
number. A cancellation reason is mandatory.`,
	Example: `  taxgate cancel 1a2b3c4d --reason "data entry error"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := factory.GetGateway()
		if err != nil {
			return err
		}

		result, err := gw.Cancel(cmd.Context(), args[0], cancelReason, cancelRemarks)
		if err != nil {
			return err
		}

		log.Info().Msgf("%s document %s is now %s", greenCheck, result.ReferenceNumber, result.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)

	cancelCmd.Flags().StringVarP(&cancelReason, "reason", "r", "", "The cancellation reason")
	cancelCmd.Flags().StringVar(&cancelRemarks, "remarks", "", "Optional free-text remarks")
	_ = cancelCmd.MarkFlagRequired("reason")
}
