package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/finlync/taxgate/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status <reference-number>",
	Short: "Query the portal status of a document",
	Long: `Fetches the current lifecycle state of a submitted document from the
portal. Read-only and safe to repeat.`,
	Example: `  taxgate status 1a2b3c4d`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := factory.GetGateway()
		if err != nil {
			return err
		}

		log.Debug().Str("reference", args[0]).Msg("querying document status")
		status, err := gw.GetStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Reference", "Status", "Ack No", "Ack Date", "Cancel Date"})

		bold := color.New(color.Bold).SprintFunc()
		t.AppendRow(table.Row{
			bold(status.ReferenceNumber),
			colorStatus(status.Status),
			status.AcknowledgmentNumber,
			status.AcknowledgmentDate,
			status.CancelDate,
		})

		s := table.StyleRounded
		s.Format.Header = text.FormatDefault
		t.SetStyle(s)
		t.Render()
		return nil
	},
}

func colorStatus(status string) string {
	switch status {
	case core.StatusGenerated:
		return color.New(color.FgGreen).Sprint(status)
	case core.StatusCancelled:
		return color.New(color.FgRed).Sprint(status)
	default:
		return status
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
