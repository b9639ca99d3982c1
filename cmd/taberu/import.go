package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/taberu/internal/cli"
	"github.com/hyperjump/taberu/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import foods from JSON or XLSX files",
	Long: `Import foods from .json files (an array of objects) or .xlsx workbooks
(first sheet, header row first). Every row goes through the same rules as
a hand-entered food; rejected rows are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	return withComponents(func(c *Components) error {
		imp := importer.New(c.Store, importer.WithIndexer(c.Catalog), importer.WithLogger(c.Logger))
		out := cmd.OutOrStdout()

		var results []*importer.Result
		failed := 0
		for _, path := range args {
			res, err := imp.ImportFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			results = append(results, res)
			if res.Imported == 0 {
				failed++
			}
		}

		if format == cli.OutputJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		} else {
			for _, res := range results {
				fmt.Fprintf(out, "%s: imported %d\n", res.Path, res.Imported)
				for _, rowErr := range res.Errors {
					fmt.Fprintf(out, "  %s\n", rowErr.Error())
				}
			}
		}
		if failed == len(results) {
			return fmt.Errorf("nothing imported")
		}
		return nil
	})
}
