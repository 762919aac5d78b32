package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/verdeo/ndvicalc/internal/delivery"
	"github.com/verdeo/ndvicalc/internal/output"
)

const examplePath = "example/doberitzer_heide.geojson"

var (
	flagFile    string
	flagFull    bool
	flagPlot    bool
	flagCSV     string
	flagExample bool
)

var rootCmd = &cobra.Command{
	Use:   "ndvicalc",
	Short: "Compute NDVI statistics for a GeoJSON area of interest",
	Long: "Finds the latest cloud-free Sentinel-2 scene over a GeoJSON polygon, " +
		"streams only the needed window of the NIR and RED bands and computes " +
		"per-pixel NDVI with summary statistics.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagFile, "file", "", "path or url to a GeoJSON file with the area of interest")
	rootCmd.Flags().BoolVar(&flagFull, "full", false, "print full statistics (max, min, std)")
	rootCmd.Flags().BoolVar(&flagPlot, "plot", false, "render a PNG of the NDVI at the area of interest")
	rootCmd.Flags().StringVar(&flagCSV, "csv", "", "append the run statistics to this CSV file")
	rootCmd.Flags().BoolVar(&flagExample, "example", false, "run the bundled Doberitzer Heide example")
}

func run(cmd *cobra.Command, args []string) error {
	source := flagFile
	if flagExample {
		color.Yellow("Using example %s", examplePath)
		source = examplePath
	}
	if source == "" {
		return fmt.Errorf("a path or url is required, see 'ndvicalc --help'")
	}

	pipeline := delivery.New()
	result, err := pipeline.Run(cmd.Context(), source, delivery.Options{})
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		color.Yellow("Warning: %s", warning)
	}

	color.Green("Latest data found that intersects geometry: %s", result.Scene.Datetime)
	fmt.Printf("%s Average ndvi %v\n", result.Scene.Datetime, result.NDVI.Mean)
	if flagFull {
		fmt.Printf("%s Max ndvi %v\n", result.Scene.Datetime, result.NDVI.Max)
		fmt.Printf("%s Min ndvi %v\n", result.Scene.Datetime, result.NDVI.Min)
		fmt.Printf("%s Std ndvi %v\n", result.Scene.Datetime, result.NDVI.Std)
	}

	if flagCSV != "" {
		record := output.StatsRecord{
			Scene:       result.Scene.Datetime,
			Source:      source,
			ValidPixels: result.NDVI.ValidCount,
			Mean:        result.NDVI.Mean,
			Max:         result.NDVI.Max,
			Min:         result.NDVI.Min,
			Std:         result.NDVI.Std,
		}
		if err := output.AppendStats(flagCSV, record); err != nil {
			return err
		}
		color.Green("Statistics appended to %s", flagCSV)
	}

	if flagPlot {
		plotPath := fmt.Sprintf("ndvi_%s.png", sanitize(result.Scene.Datetime))
		if err := output.RenderPNG(result.NDVI.Band, plotPath); err != nil {
			return err
		}
		color.Green("NDVI plot saved to %s", plotPath)
	}

	return nil
}

func sanitize(s string) string {
	return strings.NewReplacer(":", "-", "/", "-", " ", "_").Replace(s)
}

func main() {
	// Optional .env; absence is fine in CI and on analyst machines.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %s", err.Error())
		os.Exit(1)
	}
}
