package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/speaker-cli/internal/model"
)

var stageNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestStageSourceRecords_Empty(t *testing.T) {
	n, err := StageSourceRecords(context.TODO(), nil, "run-1", nil, stageNow)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestStageSourceRecords_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"raw_records"}, rawRecordColumns).WillReturnResult(2)

	records := []*model.SourceRecord{
		{Source: "a_speakers", SourceID: "u1", QualityTier: model.TierCat2, RawName: "Jane Smith"},
		{Source: "speakerhub", SourceID: "u2", QualityTier: model.TierCat3, RawName: "Bob Jones"},
	}
	n, err := StageSourceRecords(context.Background(), mock, "run-1", records, stageNow)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageSourceRecords_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"raw_records"}, rawRecordColumns).
		WillReturnError(fmt.Errorf("copy failed"))

	_, err = StageSourceRecords(context.Background(), mock,
		"run-1", []*model.SourceRecord{{Source: "a_speakers", RawName: "Jane"}}, stageNow)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
