package cmd

import (
	"fmt"

	"github.com/KaramelBytes/heartstat-cli/internal/analysis"
	"github.com/KaramelBytes/heartstat-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	reportFlags      lookupFlags
	reportSampleRows int
	reportBins       int
	reportOutput     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Locate the dataset and print its statistics and chart data",
	Long: `Locate the dataset, validate it, and render a Markdown report with a preview,
descriptive statistics, missing values, the age histogram, heart disease by gender,
cholesterol by heart disease status, lifestyle factors and the correlation matrix.`,
	Example: `  heartstat report
  heartstat report --path heart_disease.csv --bins 20 -o report.md
  heartstat report --upload ./export.csv --sample-rows 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		req, err := reportFlags.request(cmd, c)
		if err != nil {
			return err
		}
		res := newLocator(c).Locate(req)
		if !res.OK() {
			return failure(res)
		}

		opt := analysis.DefaultOptions()
		opt.SampleRows = c.SampleRows
		opt.AgeBins = c.AgeBins
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = reportSampleRows
		}
		if cmd.Flags().Changed("bins") {
			opt.AgeBins = reportBins
		}
		name := res.Source.Path
		if name == "" {
			name = "upload"
		}
		rep := analysis.BuildReport(res.Table, name, res.Source.String(), opt)
		md := rep.Markdown()
		logger.Debug("report built", "request_id", req.ID, "rows", rep.Rows, "warnings", len(rep.Warnings))

		if reportOutput != "" {
			path, err := utils.ExpandHome(reportOutput)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(path, []byte(md)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", path)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportFlags.register(reportCmd)
	reportCmd.Flags().IntVar(&reportSampleRows, "sample-rows", 5, "number of leading rows to preview (overrides sample_rows)")
	reportCmd.Flags().IntVar(&reportBins, "bins", 30, "number of age histogram bins (overrides age_bins)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to this file instead of stdout")
}
