package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/speaker-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return newPostgresWithPool(mock), mock
}

func TestPostgresStore_GetProfile_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT document FROM profiles WHERE profile_id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	p, err := s.GetProfile(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProfile_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	p := testProfile("p1", "Jane Smith", "USA", 60)
	doc, err := json.Marshal(p)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT document FROM profiles WHERE profile_id = \$1`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(doc))

	got, err := s.GetProfile(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jane Smith", got.Identity.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertProfile(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs("p1", "Jane Smith", "smith|usa", "USA", "cat_2", 60,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertProfile(context.Background(), testProfile("p1", "Jane Smith", "USA", 60))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("run-1", "complete", 9, pgxmock.AnyArg(), nil,
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run := &model.Run{
		ID:         "run-1",
		Status:     model.RunStatusComplete,
		Profiles:   9,
		StartedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 6, 1, 10, 1, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProfiles_BuildsFilters(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	p := testProfile("p1", "Jane Smith", "USA", 80)
	doc, err := json.Marshal(p)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT document FROM profiles WHERE true AND country = \$1 AND profile_score >= \$2`).
		WithArgs("USA", 50, 100).
		WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(doc))

	got, err := s.ListProfiles(context.Background(), ProfileFilter{Country: "USA", MinScore: 50})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ProfileID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StageRecords(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"raw_records"},
		[]string{"run_id", "source", "source_id", "quality_tier", "document", "staged_at"}).
		WillReturnResult(1)

	n, err := s.StageRecords(context.Background(), "run-1",
		[]*model.SourceRecord{{Source: "a_speakers", SourceID: "u1", RawName: "Jane"}},
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS profiles`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
