// Package cmd wires simhost's cobra command tree, grounded on the teacher's
// cmd/cli/cmd package structure.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/autonomysim/coresim/pkg/logger"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "simhost",
	Short: "AutonomySim core simulation host",
	Long: `simhost hosts the physics loop, vehicle fleet, and RPC surface of
the AutonomySim core: it drives one or more vehicles through the sensor
and control cascade and exposes them over JSON-RPC and a live telemetry
feed for external clients.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default: settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "optional .env file to load before startup")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportPlotCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	logger.SetLevel(logger.ParseLevel(logLevel))
	logger.SetNoColor(noColor)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}
	viper.SetEnvPrefix("simhost")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
