package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/pestwatch/internal/dataset"
)

// resetFlags restores every flag to its default so Changed state does not
// leak between invocations of the shared root command.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns its stdout.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// isolate points HOME at a temp dir so no user config is read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PESTWATCH_LOG_LEVEL", "error")
	return home
}

// writeFixture writes n daily readings from 2020-01-01 with
// count = 2*t + 3*h + 5 into Sheet3 of an xlsx workbook.
func writeFixture(t *testing.T, dir string, n int) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Sheet3"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	header := []any{dataset.ColDate, dataset.ColTemperature, dataset.ColHumidity, dataset.ColAdultMales}
	if err := f.SetSheetRow("Sheet3", "A1", &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	for i := 0; i < n; i++ {
		tm := float64(10 + i)
		h := float64(50 + (i*i)%11)
		row := []any{
			fmt.Sprintf("2020-01-%02d", i+1),
			tm, h, int(2*tm + 3*h + 5),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow("Sheet3", cell, &row); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
	}
	path := filepath.Join(dir, "temp_humid_data.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestCLI_DescribeMarkdown(t *testing.T) {
	home := isolate(t)
	src := writeFixture(t, home, 12)

	out := runCmd(t, "describe", "--source", src, "--from", "2020-01-03", "--to", "2020-01-05")
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"temp_humid_data.xlsx (sheet: Sheet3)",
		"Range: 2020-01-03 to 2020-01-05",
		"Rows: 3 of 12",
		"[DESCRIPTIVE STATISTICS]",
		"[CORRELATIONS]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_DescribeToFileAndFormats(t *testing.T) {
	home := isolate(t)
	src := writeFixture(t, home, 12)

	outPath := filepath.Join(home, "reports", "summary.json")
	runCmd(t, "describe", "--source", src, "--format", "json", "-o", outPath)
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), `"rows": 12`) {
		t.Fatalf("unexpected json report:\n%s", b)
	}

	table := runCmd(t, "describe", "--source", src, "--format", "table")
	if !strings.Contains(table, "adult_male_count") {
		t.Fatalf("table output missing column:\n%s", table)
	}

	if _, err := execCmd(t, "describe", "--source", src, "--format", "yaml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if _, err := execCmd(t, "describe", "--source", src, "--from", "03/01/2020"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestCLI_Predict(t *testing.T) {
	home := isolate(t)
	src := writeFixture(t, home, 12)

	out := runCmd(t, "predict", "--source", src, "--temperature", "30", "--humidity", "70", "-q")
	if strings.TrimSpace(out) != "275.00" {
		t.Fatalf("predict = %q, want 275.00", out)
	}

	boxed := runCmd(t, "predict", "--source", src)
	if !strings.Contains(boxed, "adult males:") {
		t.Fatalf("unexpected predict output:\n%s", boxed)
	}
}

func TestCLI_PredictUnavailable(t *testing.T) {
	home := isolate(t)
	src := writeFixture(t, home, 2)

	_, err := execCmd(t, "predict", "--source", src, "--temperature", "30", "--humidity", "70")
	if err == nil || !strings.Contains(err.Error(), "insufficient data") {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestCLI_LoadFailures(t *testing.T) {
	home := isolate(t)
	src := writeFixture(t, home, 5)

	if _, err := execCmd(t, "describe", "--source", filepath.Join(home, "missing.xlsx")); err == nil {
		t.Fatalf("expected error for missing source")
	}
	_, err := execCmd(t, "describe", "--source", src, "--sheet", "Sheet9")
	if err == nil || !strings.Contains(err.Error(), "Sheet9") {
		t.Fatalf("expected missing sheet error, got %v", err)
	}
}

func TestCLI_ExportAndChart(t *testing.T) {
	home := isolate(t)
	src := writeFixture(t, home, 12)

	wb := filepath.Join(home, "out", "export.xlsx")
	out := runCmd(t, "export", "--source", src, "-o", wb, "--to", "2020-01-06")
	if !strings.Contains(out, "Wrote 6 readings") {
		t.Fatalf("unexpected export output: %s", out)
	}
	back, err := dataset.Load(wb, "Readings")
	if err != nil {
		t.Fatalf("reload export: %v", err)
	}
	if back.Len() != 6 {
		t.Fatalf("exported %d readings, want 6", back.Len())
	}

	dir := filepath.Join(home, "charts")
	runCmd(t, "chart", "--source", src, "--dir", dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read chart dir: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("got %d charts, want 6", len(entries))
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolate(t)

	runCmd(t, "config", "set", "sheet", "Readings")
	runCmd(t, "config", "set", "addr", ":9999")
	if _, err := os.Stat(filepath.Join(home, ".pestwatch", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}

	out := runCmd(t, "config", "show")
	for _, want := range []string{"sheet: Readings", "addr: :9999", "source: temp_humid_data.xlsx"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	if _, err := execCmd(t, "config", "set", "log_format", "xml"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := execCmd(t, "config", "set", "bogus", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestCLI_DescribeCSVIgnoresDefaultSheet(t *testing.T) {
	home := isolate(t)
	src := filepath.Join(home, "readings.csv")
	body := "Date,temperature_mean,relativehumidity_mean,no. of Adult males\n" +
		"2020-01-01,21.5,70.2,12\n" +
		"2020-01-02,22.0,68.0,15\n" +
		"2020-01-03,19.25,75.5,0\n"
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := runCmd(t, "describe", "--source", src)
	if !strings.Contains(out, "Rows: 3 of 3") {
		t.Fatalf("unexpected describe output:\n%s", out)
	}
}
