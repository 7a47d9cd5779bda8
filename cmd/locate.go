package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/heartstat-cli/internal/dataset"
	"github.com/KaramelBytes/heartstat-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	locateFlags lookupFlags
	locateJSON  bool
)

// locateSummary is the --json payload of the locate command.
type locateSummary struct {
	Outcome string   `json:"outcome"`
	Source  string   `json:"source"`
	Message string   `json:"message,omitempty"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Find and validate the dataset without analyzing it",
	Example: `  heartstat locate
  heartstat locate --path data/heart_disease.csv
  heartstat locate --search-root ~/datasets --pattern '**/heart*.csv'
  cat heart.csv | heartstat locate --upload -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		req, err := locateFlags.request(cmd, c)
		if err != nil {
			return err
		}
		res := newLocator(c).Locate(req)
		out := cmd.OutOrStdout()

		if locateJSON {
			sum := locateSummary{
				Outcome: res.Outcome.String(),
				Source:  res.Source.String(),
				Missing: res.Missing,
			}
			if res.OK() {
				sum.Rows = res.Table.Len()
				sum.Columns = res.Table.Columns()
			} else {
				sum.Message = res.Message
			}
			b, err := utils.PrettyJSON(sum)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			if !res.OK() {
				return failure(res)
			}
			return nil
		}

		if !res.OK() {
			return failure(res)
		}
		fmt.Fprintf(out, "✓ Dataset loaded (%s)\n", res.Source)
		fmt.Fprintf(out, "Rows: %d\n", res.Table.Len())
		fmt.Fprintf(out, "Columns: %s\n", strings.Join(res.Table.Columns(), ", "))
		for _, col := range dataset.ExpectedColumns {
			if !res.Table.Has(col) {
				fmt.Fprintf(out, "⚠ Column %q not present; related report sections will be skipped\n", col)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateFlags.register(locateCmd)
	locateCmd.Flags().BoolVar(&locateJSON, "json", false, "print the lookup result as JSON")
}
