package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/finlync/taxgate/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(buildinfo.GetBuildInfo())
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
