package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/scout"
	"github.com/sells-group/vendscout/pkg/census"
)

var scoutCmd = &cobra.Command{
	Use:   "scout",
	Short: "Fetch live signals and score a site end to end",
	Long: `Resolves a site by address or coordinates, fetches signals from the
configured providers (census demographics, OpenStreetMap, popular
times, optionally Yelp), and produces the full viability report.

Examples:
  # Score a named gym by coordinates
  scout --category gym --name "Gold's Gym" --lat 40.7128 --lng -74.0060

  # Resolve a street address through the census geocoder first
  scout --category office --address "350 5th Ave, New York, NY" --format json`,
	RunE: runScoutCmd,
}

func init() {
	f := scoutCmd.Flags()
	f.String("category", "", "machine category (required)")
	f.String("address", "", "street address to resolve")
	f.String("name", "", "place name for busyness and review lookups")
	f.Float64("lat", 0, "latitude")
	f.Float64("lng", 0, "longitude")
	f.Int("reviews", 0, "known review count, skips neutral default")
	f.String("format", "table", "output format: table or json")
	_ = scoutCmd.MarkFlagRequired("category")

	rootCmd.AddCommand(scoutCmd)
}

func runScoutCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catFlag, _ := cmd.Flags().GetString("category")
	cat, err := category.Parse(catFlag)
	if err != nil {
		return err
	}

	svc, cache, err := initScout(ctx)
	if err != nil {
		return err
	}
	defer cache.Close() //nolint:errcheck

	lat, _ := cmd.Flags().GetFloat64("lat")
	lng, _ := cmd.Flags().GetFloat64("lng")
	name, _ := cmd.Flags().GetString("name")
	address, _ := cmd.Flags().GetString("address")
	areaLevel := false

	if address != "" && !cmd.Flags().Changed("lat") {
		tract, err := census.New(cfg.Census, cache).TractForAddress(ctx, address)
		if err != nil {
			return eris.Wrap(err, "scout: resolve address")
		}
		if tract == nil {
			return eris.Errorf("scout: address %q did not match", address)
		}
		lat, lng = tract.Lat, tract.Lng
		areaLevel = true
		if name == "" {
			name = address
		}
	}
	if lat == 0 && lng == 0 {
		return eris.New("scout: provide --address or --lat/--lng")
	}

	reviews, _ := cmd.Flags().GetInt("reviews")
	report, err := svc.Scout(ctx, scout.Request{
		Category:         cat,
		PlaceName:        name,
		Lat:              lat,
		Lng:              lng,
		UserRatingsTotal: reviews,
		IsAreaLevel:      areaLevel,
	})
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "table":
		printReport(os.Stdout, report)
		return nil
	default:
		return eris.Errorf("unknown format %q", format)
	}
}

func printReport(w io.Writer, r *scout.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Site:\t%s (%.4f, %.4f)\n", r.PlaceName, r.Lat, r.Lng)
	fmt.Fprintf(tw, "Category:\t%s\n", r.Category)
	fmt.Fprintf(tw, "Overall:\t%d (%s)\n", r.Score.Overall, r.Label)
	fmt.Fprintf(tw, "Foot traffic:\t%d (confidence %s, %s)\n",
		r.FootTraffic.Score, r.FootTraffic.Confidence.Level, r.FootTraffic.Confidence.Accuracy)
	fmt.Fprintf(tw, "Daily visits:\t%s\n", r.FootTraffic.DailyVisitRange)
	fmt.Fprintf(tw, "Peak hours:\t%s\n", joinOrDash(r.FootTraffic.PeakHours))
	fmt.Fprintf(tw, "Golden hours:\t%d weighted\n", r.GoldenHours.Weighted)
	fmt.Fprintf(tw, "Competition:\t%s (%d machines, %d same category)\n",
		r.Competition.Market, r.Competition.TotalMachines, r.Competition.SameCategory)
	fmt.Fprintf(tw, "Revenue:\t%s\n", r.Revenue.FormatRange())
	fmt.Fprintf(tw, "Data quality:\t%s\n", r.Score.DataQuality)
	tw.Flush()

	if r.GoldenHours.SeasonalWarning != "" {
		fmt.Fprintf(w, "\n  %s\n", r.GoldenHours.SeasonalWarning)
	}
	if len(r.Reasoning) > 0 {
		fmt.Fprintln(w)
		for _, line := range r.Reasoning {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	out := items[0]
	for _, s := range items[1:] {
		out += ", " + s
	}
	return out
}
