package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/speaker-cli/internal/model"
	"github.com/sells-group/speaker-cli/internal/resolve"
)

// SQLiteStore implements ProfileStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	profile_id    TEXT PRIMARY KEY,
	full_name     TEXT NOT NULL,
	surname_key   TEXT NOT NULL,
	country       TEXT,
	quality_tier  TEXT,
	profile_score INTEGER NOT NULL DEFAULT 0,
	sources       TEXT NOT NULL DEFAULT '[]',
	document      TEXT NOT NULL,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	profiles    INTEGER NOT NULL DEFAULT 0,
	sources     TEXT NOT NULL DEFAULT '{}',
	error       TEXT,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_profiles_full_name ON profiles(full_name);
CREATE INDEX IF NOT EXISTS idx_profiles_surname_key ON profiles(surname_key);
CREATE INDEX IF NOT EXISTS idx_profiles_country ON profiles(country);
CREATE INDEX IF NOT EXISTS idx_profiles_score ON profiles(profile_score);
CREATE INDEX IF NOT EXISTS idx_profiles_tier ON profiles(quality_tier);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *model.CanonicalProfile) error {
	doc, sources, err := encodeProfile(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: encode profile")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles
		   (profile_id, full_name, surname_key, country, quality_tier, profile_score, sources, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(profile_id) DO UPDATE SET
		   full_name = excluded.full_name,
		   surname_key = excluded.surname_key,
		   country = excluded.country,
		   quality_tier = excluded.quality_tier,
		   profile_score = excluded.profile_score,
		   sources = excluded.sources,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		p.ProfileID, p.Identity.FullName, profileSurnameKey(p), p.Location.Country,
		string(p.Metadata.QualityTier), p.Metadata.ProfileScore, sources, doc,
		p.Metadata.CreatedAt.UTC(), p.Metadata.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert profile %s", p.ProfileID)
}

func (s *SQLiteStore) GetProfile(ctx context.Context, profileID string) (*model.CanonicalProfile, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM profiles WHERE profile_id = ?`, profileID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get profile %s", profileID)
	}
	return decodeProfile(doc)
}

func (s *SQLiteStore) ListProfiles(ctx context.Context, filter ProfileFilter) ([]model.CanonicalProfile, error) {
	query := `SELECT document FROM profiles WHERE true`
	args := []any{}

	if filter.Source != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(profiles.sources) WHERE json_each.value = ?)`
		args = append(args, filter.Source)
	}
	if filter.Country != "" {
		query += ` AND country = ?`
		args = append(args, filter.Country)
	}
	if filter.Tier != "" {
		query += ` AND quality_tier = ?`
		args = append(args, filter.Tier)
	}
	if filter.MinScore > 0 {
		query += ` AND profile_score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY profile_score DESC, profile_id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var profiles []model.CanonicalProfile
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		p, err := decodeProfile(doc)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

func (s *SQLiteStore) CountProfiles(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count profiles")
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run) error {
	sourcesJSON, err := json.Marshal(run.Sources)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run sources")
	}

	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, profiles, sources, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   profiles = excluded.profiles,
		   sources = excluded.sources,
		   error = excluded.error,
		   finished_at = excluded.finished_at`,
		run.ID, string(run.Status), run.Profiles, string(sourcesJSON),
		nullIfEmpty(run.Error), run.StartedAt.UTC(), finished,
	)
	return eris.Wrapf(err, "sqlite: save run %s", run.ID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, profiles, sources, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		var sourcesJSON []byte
		var errText sql.NullString
		var finished sql.NullTime

		if err := rows.Scan(&r.ID, &status, &r.Profiles, &sourcesJSON, &errText, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = model.RunStatus(status)
		if err := json.Unmarshal(sourcesJSON, &r.Sources); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal run sources")
		}
		if errText.Valid {
			r.Error = errText.String
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		BySource:     map[string]int{},
		ByTier:       map[string]int{},
		ScoreBuckets: map[string]int{},
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&stats.Profiles); err != nil {
		return nil, eris.Wrap(err, "sqlite: stats count")
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&stats.Runs); err != nil {
		return nil, eris.Wrap(err, "sqlite: stats runs")
	}

	if stats.Profiles > 0 {
		if err := s.db.QueryRowContext(ctx,
			`SELECT AVG(profile_score) FROM profiles`).Scan(&stats.AvgScore); err != nil {
			return nil, eris.Wrap(err, "sqlite: stats avg score")
		}
	}

	if err := s.groupCount(ctx,
		`SELECT quality_tier, COUNT(*) FROM profiles WHERE quality_tier != '' GROUP BY quality_tier`,
		stats.ByTier); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx,
		`SELECT json_each.value, COUNT(*) FROM profiles, json_each(profiles.sources) GROUP BY json_each.value`,
		stats.BySource); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT profile_score FROM profiles`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats scores")
	}
	defer rows.Close()
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		stats.ScoreBuckets[scoreBucket(score)]++
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: stats iterate")
}

func (s *SQLiteStore) groupCount(ctx context.Context, query string, dst map[string]int) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return eris.Wrapf(err, "sqlite: group count %s", query)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return eris.Wrap(err, "sqlite: scan group count")
		}
		dst[key] = count
	}
	return eris.Wrap(rows.Err(), "sqlite: group count iterate")
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// encodeProfile renders the document column plus the extracted sources
// column used for filtering.
func encodeProfile(p *model.CanonicalProfile) (doc, sources string, err error) {
	docBytes, err := json.Marshal(p)
	if err != nil {
		return "", "", err
	}
	srcBytes, err := json.Marshal(p.Metadata.Sources)
	if err != nil {
		return "", "", err
	}
	return string(docBytes), string(srcBytes), nil
}

func decodeProfile(doc []byte) (*model.CanonicalProfile, error) {
	var p model.CanonicalProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal profile document")
	}
	return &p, nil
}

// profileSurnameKey mirrors the resolver's blocking key so bucket loads
// can be pushed down to the database.
func profileSurnameKey(p *model.CanonicalProfile) string {
	return resolve.BlockingKey(resolve.NormalizeName(p.Identity.FullName), p.Location.Country)
}
