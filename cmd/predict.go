package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/pestwatch/internal/cli"
	"github.com/KaramelBytes/pestwatch/internal/prediction"
)

var (
	predTemperature float64
	predHumidity    float64
	predQuiet       bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the adult male count for given conditions",
	Long: `Fit count = intercept + a*temperature_mean + b*relativehumidity_mean on the whole
dataset and evaluate it. Omitted inputs default to the dataset means.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		svc := predictor(ds)

		t, h := prediction.Defaults(ds)
		if cmd.Flags().Changed("temperature") {
			t = predTemperature
		}
		if cmd.Flags().Changed("humidity") {
			h = predHumidity
		}
		v, err := svc.Predict(t, h)
		if err != nil {
			return fmt.Errorf("prediction unavailable: %w", err)
		}

		out := cmd.OutOrStdout()
		if predQuiet {
			fmt.Fprintln(out, prediction.Format(v))
			return nil
		}
		body := fmt.Sprintf("temperature_mean:      %.2f\nrelativehumidity_mean: %.2f\nadult males:           %s\n\n%s",
			t, h, prediction.Format(v), cli.SubtleStyle.Render(svc.Model().String()))
		fmt.Fprintln(out, cli.RenderBox("Prediction", body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().Float64Var(&predTemperature, "temperature", 0, "mean temperature (default: dataset mean)")
	predictCmd.Flags().Float64Var(&predHumidity, "humidity", 0, "mean relative humidity (default: dataset mean)")
	predictCmd.Flags().BoolVarP(&predQuiet, "quiet", "q", false, "print only the predicted value")
}
