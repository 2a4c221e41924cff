package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/estimate"
	"github.com/sells-group/vendscout/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a site from known signals, no network calls",
	Long: `Runs the scoring engine on signals you already have. Input comes
either from a JSON file matching the scoring input schema or from flags.

Examples:
  # Score a gym with 1200 reviews in a dense tract
  score --category gym --reviews 1200 --density 9000 --income 60000 \
        --age 30 --employment 0.75 --types gym,point_of_interest

  # Score from a prepared input file
  score --category office --input site.json --format json`,
	RunE: runScoreCmd,
}

func init() {
	f := scoreCmd.Flags()
	f.String("category", "", "machine category (required)")
	f.String("input", "", "JSON file with the full scoring input")
	f.Int("reviews", 0, "review count for the place")
	f.Float64("density", 0, "population density, people per sq mi")
	f.Float64("income", 0, "median household income")
	f.Float64("age", 0, "median age")
	f.Float64("employment", 0, "employment rate, 0-1")
	f.Int("competitors", 0, "nearby competing machine count")
	f.Float64("nearest", 0, "distance to nearest competitor, miles")
	f.String("types", "", "comma-separated place classification tags")
	f.String("status", "", "business status (OPERATIONAL, CLOSED_TEMPORARILY, CLOSED_PERMANENTLY)")
	f.Bool("has-hours", false, "opening hours data is available")
	f.Bool("area-level", false, "geocode resolved to an area, not a place")
	f.String("format", "table", "output format: table or json")
	_ = scoreCmd.MarkFlagRequired("category")

	rootCmd.AddCommand(scoreCmd)
}

func runScoreCmd(cmd *cobra.Command, _ []string) error {
	catFlag, _ := cmd.Flags().GetString("category")
	cat, err := category.Parse(catFlag)
	if err != nil {
		return err
	}

	in, err := scoreInput(cmd, cat)
	if err != nil {
		return err
	}

	score := scoring.Compute(in)
	reasoning := scoring.Reasoning(score, cat)
	revenue := estimate.Revenue(score.Overall, cat)

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		out := struct {
			Score     scoring.Score            `json:"score"`
			Label     string                   `json:"label"`
			Reasoning []string                 `json:"reasoning"`
			Revenue   estimate.RevenueEstimate `json:"revenue"`
		}{score, scoring.Label(score.Overall), reasoning, revenue}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "table":
		printScoreTable(os.Stdout, cat, score, reasoning, revenue)
		return nil
	default:
		return eris.Errorf("unknown format %q", format)
	}
}

// scoreInput builds the engine input from the --input file, with flags
// overriding individual fields.
func scoreInput(cmd *cobra.Command, cat category.Category) (scoring.Input, error) {
	in := scoring.Input{Category: cat}

	if path, _ := cmd.Flags().GetString("input"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return in, eris.Wrap(err, "score: read input file")
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return in, eris.Wrap(err, "score: parse input file")
		}
		in.Category = cat
	}

	f := cmd.Flags()
	if f.Changed("reviews") {
		in.UserRatingsTotal, _ = f.GetInt("reviews")
	}
	if f.Changed("density") {
		in.Demographics.PopulationDensity, _ = f.GetFloat64("density")
	}
	if f.Changed("income") {
		in.Demographics.MedianIncome, _ = f.GetFloat64("income")
	}
	if f.Changed("age") {
		in.Demographics.MedianAge, _ = f.GetFloat64("age")
	}
	if f.Changed("employment") {
		in.Demographics.EmploymentRate, _ = f.GetFloat64("employment")
	}
	if f.Changed("competitors") {
		in.Competition.Count, _ = f.GetInt("competitors")
	}
	if f.Changed("nearest") {
		in.Competition.NearestMiles, _ = f.GetFloat64("nearest")
	}
	if f.Changed("types") {
		types, _ := f.GetString("types")
		in.PlaceTypes = splitTags(types)
		in.HasPlaceDetails = true
	}
	if f.Changed("status") {
		status, _ := f.GetString("status")
		in.BusinessStatus = scoring.BusinessStatus(status)
	}
	if f.Changed("has-hours") {
		in.HasOpeningHours, _ = f.GetBool("has-hours")
	}
	if f.Changed("area-level") {
		in.IsAreaLevel, _ = f.GetBool("area-level")
	}
	if f.Changed("income") || f.Changed("density") {
		in.HasCensusData = true
	}

	return in, nil
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func printScoreTable(w io.Writer, cat category.Category, score scoring.Score, reasoning []string, revenue estimate.RevenueEstimate) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Category:\t%s\n", cat)
	fmt.Fprintf(tw, "Overall:\t%d (%s)\n", score.Overall, scoring.Label(score.Overall))
	fmt.Fprintf(tw, "Foot traffic:\t%d\n", score.FootTraffic)
	fmt.Fprintf(tw, "Demographics:\t%d\n", score.Demographics)
	fmt.Fprintf(tw, "Competition:\t%d\n", score.Competition)
	fmt.Fprintf(tw, "Building type:\t%d\n", score.BuildingType)
	fmt.Fprintf(tw, "Data quality:\t%s\n", score.DataQuality)
	fmt.Fprintf(tw, "Revenue:\t%s\n", revenue.FormatRange())
	tw.Flush()

	if len(reasoning) > 0 {
		fmt.Fprintln(w)
		for _, line := range reasoning {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
