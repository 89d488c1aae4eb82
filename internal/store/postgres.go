package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/speaker-cli/internal/db"
	"github.com/sells-group/speaker-cli/internal/model"
)

// PostgresStore implements ProfileStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"upsert_profile": upsertProfileSQL,
	"get_profile":    `SELECT document FROM profiles WHERE profile_id = $1`,
	"count_profiles": `SELECT COUNT(*) FROM profiles`,
	"save_run":       saveRunSQL,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// newPostgresWithPool wires an existing pool; used by tests with pgxmock.
func newPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	profile_id    TEXT PRIMARY KEY,
	full_name     TEXT NOT NULL,
	surname_key   TEXT NOT NULL,
	country       TEXT,
	quality_tier  TEXT,
	profile_score INTEGER NOT NULL DEFAULT 0,
	sources       JSONB NOT NULL DEFAULT '[]',
	document      JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	profiles    INTEGER NOT NULL DEFAULT 0,
	sources     JSONB NOT NULL DEFAULT '{}',
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS raw_records (
	id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	source       TEXT NOT NULL,
	source_id    TEXT NOT NULL,
	quality_tier TEXT,
	document     JSONB NOT NULL,
	staged_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profiles_full_name ON profiles(full_name);
CREATE INDEX IF NOT EXISTS idx_profiles_surname_key ON profiles(surname_key);
CREATE INDEX IF NOT EXISTS idx_profiles_country ON profiles(country);
CREATE INDEX IF NOT EXISTS idx_profiles_score ON profiles(profile_score);
CREATE INDEX IF NOT EXISTS idx_profiles_tier ON profiles(quality_tier);
CREATE INDEX IF NOT EXISTS idx_profiles_sources ON profiles USING GIN (sources);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_raw_records_run_id ON raw_records(run_id);
CREATE INDEX IF NOT EXISTS idx_raw_records_source ON raw_records(source, source_id);
`

const upsertProfileSQL = `
INSERT INTO profiles
  (profile_id, full_name, surname_key, country, quality_tier, profile_score, sources, document, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (profile_id) DO UPDATE SET
  full_name = EXCLUDED.full_name,
  surname_key = EXCLUDED.surname_key,
  country = EXCLUDED.country,
  quality_tier = EXCLUDED.quality_tier,
  profile_score = EXCLUDED.profile_score,
  sources = EXCLUDED.sources,
  document = EXCLUDED.document,
  updated_at = EXCLUDED.updated_at`

const saveRunSQL = `
INSERT INTO runs (id, status, profiles, sources, error, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  profiles = EXCLUDED.profiles,
  sources = EXCLUDED.sources,
  error = EXCLUDED.error,
  finished_at = EXCLUDED.finished_at`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, p *model.CanonicalProfile) error {
	doc, sources, err := encodeProfile(p)
	if err != nil {
		return eris.Wrap(err, "postgres: encode profile")
	}

	_, err = s.pool.Exec(ctx, upsertProfileSQL,
		p.ProfileID, p.Identity.FullName, profileSurnameKey(p), p.Location.Country,
		string(p.Metadata.QualityTier), p.Metadata.ProfileScore, sources, doc,
		p.Metadata.CreatedAt.UTC(), p.Metadata.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert profile %s", p.ProfileID)
}

func (s *PostgresStore) GetProfile(ctx context.Context, profileID string) (*model.CanonicalProfile, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM profiles WHERE profile_id = $1`, profileID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get profile %s", profileID)
	}
	return decodeProfile(doc)
}

func (s *PostgresStore) ListProfiles(ctx context.Context, filter ProfileFilter) ([]model.CanonicalProfile, error) {
	query := `SELECT document FROM profiles WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Source != "" {
		query += fmt.Sprintf(` AND sources ? $%d`, argIdx)
		args = append(args, filter.Source)
		argIdx++
	}
	if filter.Country != "" {
		query += fmt.Sprintf(` AND country = $%d`, argIdx)
		args = append(args, filter.Country)
		argIdx++
	}
	if filter.Tier != "" {
		query += fmt.Sprintf(` AND quality_tier = $%d`, argIdx)
		args = append(args, filter.Tier)
		argIdx++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND profile_score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}
	query += ` ORDER BY profile_score DESC, profile_id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []model.CanonicalProfile
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		p, err := decodeProfile(doc)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}

func (s *PostgresStore) CountProfiles(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	return count, eris.Wrap(err, "postgres: count profiles")
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run) error {
	sourcesJSON, err := json.Marshal(run.Sources)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run sources")
	}

	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC()
	}

	_, err = s.pool.Exec(ctx, saveRunSQL,
		run.ID, string(run.Status), run.Profiles, sourcesJSON,
		nullIfEmpty(run.Error), run.StartedAt.UTC(), finished,
	)
	return eris.Wrapf(err, "postgres: save run %s", run.ID)
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, status, profiles, sources, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		var sourcesJSON []byte
		var errText *string
		var finished *time.Time

		if err := rows.Scan(&r.ID, &status, &r.Profiles, &sourcesJSON, &errText, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		if err := json.Unmarshal(sourcesJSON, &r.Sources); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal run sources")
		}
		if errText != nil {
			r.Error = *errText
		}
		if finished != nil {
			r.FinishedAt = *finished
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		BySource:     map[string]int{},
		ByTier:       map[string]int{},
		ScoreBuckets: map[string]int{},
	}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&stats.Profiles); err != nil {
		return nil, eris.Wrap(err, "postgres: stats count")
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM runs`).Scan(&stats.Runs); err != nil {
		return nil, eris.Wrap(err, "postgres: stats runs")
	}

	if stats.Profiles > 0 {
		if err := s.pool.QueryRow(ctx,
			`SELECT AVG(profile_score)::float8 FROM profiles`).Scan(&stats.AvgScore); err != nil {
			return nil, eris.Wrap(err, "postgres: stats avg score")
		}
	}

	if err := s.groupCount(ctx,
		`SELECT quality_tier, COUNT(*) FROM profiles WHERE quality_tier != '' GROUP BY quality_tier`,
		stats.ByTier); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx,
		`SELECT src, COUNT(*) FROM profiles, jsonb_array_elements_text(sources) AS src GROUP BY src`,
		stats.BySource); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `SELECT profile_score FROM profiles`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats scores")
	}
	defer rows.Close()
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, eris.Wrap(err, "postgres: scan score")
		}
		stats.ScoreBuckets[scoreBucket(score)]++
	}
	return stats, eris.Wrap(rows.Err(), "postgres: stats iterate")
}

func (s *PostgresStore) groupCount(ctx context.Context, query string, dst map[string]int) error {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return eris.Wrap(err, "postgres: group count")
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return eris.Wrap(err, "postgres: scan group count")
		}
		dst[key] = count
	}
	return eris.Wrap(rows.Err(), "postgres: group count iterate")
}

// StageRecords bulk-copies adapted source records into the audit table.
func (s *PostgresStore) StageRecords(ctx context.Context, runID string, records []*model.SourceRecord, now time.Time) (int64, error) {
	return db.StageSourceRecords(ctx, s.pool, runID, records, now)
}
