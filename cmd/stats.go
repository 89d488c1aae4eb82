package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/speaker-cli/internal/store"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}
		formatStats(os.Stdout, stats)
		return nil
	},
}

// formatStats prints the corpus report in the order profiles are usually
// inspected: totals, provenance, trust, then score spread.
func formatStats(w io.Writer, stats *store.Stats) {
	fmt.Fprintf(w, "Profiles: %d\n", stats.Profiles)
	fmt.Fprintf(w, "Runs:     %d\n", stats.Runs)
	fmt.Fprintf(w, "Average profile score: %.1f\n", stats.AvgScore)

	printCounts(w, "BY SOURCE", stats.BySource)
	printCounts(w, "BY TIER", stats.ByTier)
	printCounts(w, "SCORE DISTRIBUTION", stats.ScoreBuckets)
}

func printCounts(w io.Writer, header string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s\n", header)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%d\n", k, counts[k])
	}
	tw.Flush()
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit stats as JSON")
	rootCmd.AddCommand(statsCmd)
}
