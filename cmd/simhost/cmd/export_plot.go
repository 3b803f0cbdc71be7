package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autonomysim/coresim/pkg/logger"
	"github.com/autonomysim/coresim/pkg/telemetry"
)

var (
	plotDBPath   string
	plotVehicle  string
	plotOutPath  string
	plotKind     string
)

var exportPlotCmd = &cobra.Command{
	Use:   "export-plot",
	Short: "Render a recorded trajectory to an image",
	Long:  `Reads a SQLite recording produced by the "sqlite" telemetry sink and renders either an altitude or ground-track plot for one vehicle.`,
	RunE:  runExportPlot,
}

func init() {
	exportPlotCmd.Flags().StringVar(&plotDBPath, "db", "recording.sqlite", "path to the SQLite recording")
	exportPlotCmd.Flags().StringVar(&plotVehicle, "vehicle", "", "vehicle name to plot")
	exportPlotCmd.Flags().StringVar(&plotOutPath, "out", "plot.png", "output image path")
	exportPlotCmd.Flags().StringVar(&plotKind, "kind", "altitude", "plot kind: altitude | ground-track")
}

func runExportPlot(cmd *cobra.Command, _ []string) error {
	sink, err := telemetry.NewSQLiteSink(plotDBPath)
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer sink.Close()

	rows, err := sink.Query(plotVehicle)
	if err != nil {
		return fmt.Errorf("failed to query recording: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no rows recorded for vehicle %q", displayName(plotVehicle))
	}

	exporter := telemetry.NewPlotExporter()
	switch plotKind {
	case "ground-track":
		err = exporter.ExportGroundTrack(rows, plotVehicle, plotOutPath)
	default:
		err = exporter.ExportAltitude(rows, plotVehicle, plotOutPath)
	}
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}

	logger.Successf("wrote %s", plotOutPath)
	return nil
}
