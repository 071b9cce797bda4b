package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/pestwatch/internal/chart"
	"github.com/KaramelBytes/pestwatch/internal/cli"
	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

var (
	chartFrom string
	chartTo   string
	chartDir  string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render PNG charts for a date range",
	Long: `Render a temperature/humidity time series, adult male counts as bars (every 5th
reading), a 20-bin count histogram and a correlation heat map.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		from, to, err := dateRange(ds, chartFrom, chartTo)
		if err != nil {
			return err
		}
		dir := cfg.ChartDir
		if cmd.Flags().Changed("dir") {
			dir = chartDir
		}
		paths, err := chart.All(dataset.Filter(ds, from, to), dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+p))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartFrom, "from", "", "first date to include (YYYY-MM-DD)")
	chartCmd.Flags().StringVar(&chartTo, "to", "", "last date to include (YYYY-MM-DD)")
	chartCmd.Flags().StringVar(&chartDir, "dir", "charts", "output directory (overrides config)")
}
