package store

import (
	"context"
	"time"

	"github.com/sells-group/speaker-cli/internal/model"
)

// ProfileFilter specifies criteria for listing canonical profiles.
type ProfileFilter struct {
	Source   string `json:"source,omitempty"`
	Country  string `json:"country,omitempty"`
	Tier     string `json:"tier,omitempty"`
	MinScore int    `json:"min_score,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Stats summarizes the consolidated corpus.
type Stats struct {
	Profiles     int            `json:"profiles"`
	Runs         int            `json:"runs"`
	BySource     map[string]int `json:"by_source"`
	ByTier       map[string]int `json:"by_tier"`
	ScoreBuckets map[string]int `json:"score_buckets"`
	AvgScore     float64        `json:"avg_profile_score"`
}

// RecordStager is implemented by backends that can archive the adapted
// source records of a run for audit.
type RecordStager interface {
	StageRecords(ctx context.Context, runID string, records []*model.SourceRecord, now time.Time) (int64, error)
}

// ProfileStore defines the persistence interface for the consolidation
// pipeline. Lookups for absent rows return (nil, nil).
type ProfileStore interface {
	// Profiles
	UpsertProfile(ctx context.Context, p *model.CanonicalProfile) error
	GetProfile(ctx context.Context, profileID string) (*model.CanonicalProfile, error)
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]model.CanonicalProfile, error)
	CountProfiles(ctx context.Context) (int, error)

	// Runs
	SaveRun(ctx context.Context, run *model.Run) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Reporting
	Stats(ctx context.Context) (*Stats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// scoreBucket labels a profile score for the stats histogram.
func scoreBucket(score int) string {
	switch {
	case score >= 75:
		return "75-100"
	case score >= 50:
		return "50-74"
	case score >= 25:
		return "25-49"
	default:
		return "0-24"
	}
}
