package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/speaker-cli/internal/model"
	"github.com/sells-group/speaker-cli/internal/pipeline"
	"github.com/sells-group/speaker-cli/internal/source"
	"github.com/sells-group/speaker-cli/internal/taxonomy"
)

var (
	consolidateInput   string
	consolidateSources []string
	consolidateStage   bool
	consolidateWorkers int
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Ingest source dumps and merge them into canonical profiles",
	Long:  "Streams every present source dump from the input directory, classifies raw attributes onto the taxonomies, deduplicates records against the stored profile set, and persists merged profiles with derived quality scores.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		tables, err := loadTaxonomies()
		if err != nil {
			return err
		}

		input := consolidateInput
		if input == "" {
			input = cfg.Input.Dir
		}
		dir, err := source.NewDir(input)
		if err != nil {
			return err
		}

		workers := consolidateWorkers
		if workers <= 0 {
			workers = cfg.Pipeline.Workers
		}
		sources := consolidateSources
		if len(sources) == 0 {
			sources = cfg.Pipeline.Sources
		}

		pl := pipeline.New(st, tables, pipeline.Options{
			Workers:      workers,
			Sources:      sources,
			StageRecords: consolidateStage || cfg.Pipeline.StageRecords,
		})
		run, err := pl.Consolidate(ctx, dir)
		if err != nil {
			return eris.Wrap(err, "consolidate")
		}

		formatRunReport(os.Stdout, run)
		return nil
	},
}

func loadTaxonomies() (*taxonomy.Set, error) {
	if cfg.Taxonomy.Dir != "" {
		return taxonomy.LoadDir(cfg.Taxonomy.Dir)
	}
	return taxonomy.LoadEmbedded()
}

// formatRunReport prints the per-source ingest counts and run totals.
func formatRunReport(w io.Writer, run *model.Run) {
	names := make([]string, 0, len(run.Sources))
	for name := range run.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSEEN\tCREATED\tMERGED\tSKIPPED")
	for _, name := range names {
		c := run.Sources[name]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", name, c.Seen, c.Created, c.Merged, c.Skipped)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nRun %s: %s, %d profiles", run.ID, run.Status, run.Profiles)
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(w, " in %s", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintln(w)
}

func init() {
	consolidateCmd.Flags().StringVar(&consolidateInput, "input", "", "directory of source dumps (default from config)")
	consolidateCmd.Flags().StringArrayVar(&consolidateSources, "source", nil, "restrict the run to a source (repeatable)")
	consolidateCmd.Flags().BoolVar(&consolidateStage, "stage", false, "archive adapted records for audit (postgres only)")
	consolidateCmd.Flags().IntVar(&consolidateWorkers, "workers", 0, "parallel adapt workers (default from config)")
	rootCmd.AddCommand(consolidateCmd)
}
