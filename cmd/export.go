package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/pestwatch/internal/cli"
	"github.com/KaramelBytes/pestwatch/internal/export"
	"github.com/KaramelBytes/pestwatch/internal/utils"
)

var (
	expFrom   string
	expTo     string
	expOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write readings, statistics and the model to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		from, to, err := dateRange(ds, expFrom, expTo)
		if err != nil {
			return err
		}
		if err := utils.EnsureParentDir(expOutput); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		sum, err := export.Workbook(expOutput, ds, from, to, predictor(ds))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d readings to %s (run %s)", sum.Rows, sum.Path, sum.RunID)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&expFrom, "from", "", "first date to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&expTo, "to", "", "last date to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "pestwatch_export.xlsx", "workbook path")
}
