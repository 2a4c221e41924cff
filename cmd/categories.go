package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/estimate"
	"github.com/sells-group/vendscout/internal/goldenhours"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List machine categories and their scoring profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tWEIGHTS (FT/DEMO/COMP/BLDG)\tREVENUE P50\tPEAK HOURS")
		for _, cat := range category.All() {
			prof := category.Get(cat)
			bench := estimate.CategoryBenchmark(cat)
			fmt.Fprintf(tw, "%s\t%d/%d/%d/%d\t$%d/wk\t%s\n",
				cat,
				prof.Weights.FootTraffic, prof.Weights.Demographics,
				prof.Weights.Competition, prof.Weights.BuildingType,
				bench.P50,
				goldenhours.ConfigFor(cat).PrimaryPeak.Label,
			)
		}
		tw.Flush()

		if verbose {
			for _, cat := range category.All() {
				prof := category.Get(cat)
				fmt.Printf("\n%s: %s\n", cat, prof.Description)
				fmt.Printf("  %s\n", goldenhours.Description(cat))
				fmt.Printf("  Product fit: %s\n", strings.Join(prof.ProductFit, ", "))
			}
		}
		return nil
	},
}

func init() {
	categoriesCmd.Flags().Bool("verbose", false, "include descriptions and product fit")
	rootCmd.AddCommand(categoriesCmd)
}
