// Command limeplan previews soil classification, lime requirement and
// generated liming schedules from the reference tables, without a database.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"limeplan/pkg/reftables"
)

type rootOptions struct {
	tablesPath string
	limeCSV    string
	limeXLSX   string
	jsonOut    bool
}

func (o *rootOptions) tables() (*reftables.Set, error) {
	return reftables.Load(reftables.Options{TablesPath: o.tablesPath, LimeCSV: o.limeCSV, LimeXLSX: o.limeXLSX})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "limeplan",
		Short:        "Soil liming planner",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.tablesPath, "tables", "", "YAML reference tables replacing the embedded ones")
	root.PersistentFlags().StringVar(&opts.limeCSV, "lime-csv", "", "CSV lime requirement override")
	root.PersistentFlags().StringVar(&opts.limeXLSX, "lime-xlsx", "", "XLSX lime requirement override")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of a table")

	root.AddCommand(newClassifyCmd(opts), newRequirementCmd(opts), newPlanCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
