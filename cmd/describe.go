package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/pestwatch/internal/analysis"
	"github.com/KaramelBytes/pestwatch/internal/cli"
	"github.com/KaramelBytes/pestwatch/internal/dataset"
	"github.com/KaramelBytes/pestwatch/internal/utils"
)

var (
	descFrom       string
	descTo         string
	descOutputPath string
	descFormat     string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Summarize readings in a date range",
	Long: `Compute descriptive statistics, pairwise correlations and the adult male count
distribution for readings between --from and --to (inclusive). Either bound
defaults to the first or last date in the dataset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		from, to, err := dateRange(ds, descFrom, descTo)
		if err != nil {
			return err
		}
		rep := analysis.BuildReport(ds, from, to)

		var out string
		switch strings.ToLower(descFormat) {
		case "", "markdown", "md":
			out = rep.Markdown()
		case "json":
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
			out = string(b) + "\n"
		case "table":
			var b strings.Builder
			b.WriteString(cli.TitleStyle.Render(rep.Name) + "\n")
			fmt.Fprintf(&b, "%s to %s, %d of %d readings\n\n",
				from.Format(dataset.DateLayout), to.Format(dataset.DateLayout), rep.Rows, rep.Total)
			if err := cli.WriteStats(&b, rep.Stats); err != nil {
				return err
			}
			b.WriteString("\n")
			if err := cli.WriteCorrelations(&b, rep.Corr); err != nil {
				return err
			}
			for _, w := range rep.Warnings {
				b.WriteString("\n" + cli.FormatWarning(w))
			}
			out = b.String() + "\n"
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json|table)", descFormat)
		}

		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, []byte(out)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote report to "+descOutputPath))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVar(&descFrom, "from", "", "first date to include (YYYY-MM-DD)")
	describeCmd.Flags().StringVar(&descTo, "to", "", "last date to include (YYYY-MM-DD)")
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the report")
	describeCmd.Flags().StringVarP(&descFormat, "format", "f", "markdown", "output format: markdown|json|table")
}
