package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags; it defaults to "dev" for
// unreleased builds.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the simhost version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Println(Version)
		return nil
	},
}
