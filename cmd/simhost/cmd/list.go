package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autonomysim/coresim/pkg/logger"
	"github.com/autonomysim/coresim/pkg/settings"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the vehicles a settings file configures",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := settings.LoadOrDefault(cfgFile, envFile)
		if err != nil {
			return err
		}
		logger.LogSection("Configured vehicles")
		table := logger.NewTable("Name", "Type", "Mass", "Sensors")
		for _, v := range cfg.Vehicles {
			table.AddRow(displayName(v.Name), v.Type, fmt.Sprintf("%.2f", v.Mass), strings.Join(v.Sensors, ","))
		}
		table.Print()
		return nil
	},
}
