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

	"github.com/sells-group/speaker-cli/internal/model"
	"github.com/sells-group/speaker-cli/internal/store"
)

var profilesFilter struct {
	source   string
	country  string
	tier     string
	minScore int
	limit    int
	offset   int
	asJSON   bool
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Query consolidated speaker profiles",
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

		profiles, err := st.ListProfiles(ctx, store.ProfileFilter{
			Source:   profilesFilter.source,
			Country:  profilesFilter.country,
			Tier:     profilesFilter.tier,
			MinScore: profilesFilter.minScore,
			Limit:    profilesFilter.limit,
			Offset:   profilesFilter.offset,
		})
		if err != nil {
			return eris.Wrap(err, "profiles")
		}
		if len(profiles) == 0 {
			fmt.Fprintln(os.Stderr, "No profiles found.")
			return nil
		}

		if profilesFilter.asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(profiles)
		}
		formatProfilesList(os.Stdout, profiles)
		return nil
	},
}

// -- profiles show --

var profilesShowCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Show one profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		p, err := st.GetProfile(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "profiles show")
		}
		if p == nil {
			return eris.Errorf("no profile with id %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

func formatProfilesList(w io.Writer, profiles []model.CanonicalProfile) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tTIER\tSCORE\tSOURCES")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%.8s\t%s\t%s\t%s\t%d\t%s\n",
			p.ProfileID, p.Identity.FullName, p.Location.Country,
			p.Metadata.QualityTier, p.Metadata.ProfileScore,
			strings.Join(p.Metadata.Sources.Values(), ","),
		)
	}
	tw.Flush()
}

func init() {
	profilesCmd.Flags().StringVar(&profilesFilter.source, "source", "", "filter by contributing source")
	profilesCmd.Flags().StringVar(&profilesFilter.country, "country", "", "filter by country")
	profilesCmd.Flags().StringVar(&profilesFilter.tier, "tier", "", "filter by quality tier (cat_1 .. cat_4)")
	profilesCmd.Flags().IntVar(&profilesFilter.minScore, "min-score", 0, "minimum profile score")
	profilesCmd.Flags().IntVar(&profilesFilter.limit, "limit", 50, "max number of profiles to display")
	profilesCmd.Flags().IntVar(&profilesFilter.offset, "offset", 0, "pagination offset")
	profilesCmd.Flags().BoolVar(&profilesFilter.asJSON, "json", false, "emit profiles as JSON")

	profilesCmd.AddCommand(profilesShowCmd)
	rootCmd.AddCommand(profilesCmd)
}
