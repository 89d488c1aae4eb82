package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/speaker-cli/internal/model"
)

// rawRecordColumns matches the raw_records audit table. Every adapted
// source record is staged there so a merge decision can always be traced
// back to its inputs.
var rawRecordColumns = []string{
	"run_id", "source", "source_id", "quality_tier", "document", "staged_at",
}

// StageSourceRecords bulk-inserts adapted source records for one run
// using the COPY protocol.
func StageSourceRecords(ctx context.Context, pool Pool, runID string, records []*model.SourceRecord, now time.Time) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return 0, eris.Wrapf(err, "db: marshal record %s/%s", rec.Source, rec.SourceID)
		}
		rows = append(rows, []any{
			runID, rec.Source, rec.SourceID, string(rec.QualityTier), doc, now.UTC(),
		})
	}

	n, err := pool.CopyFrom(ctx, pgx.Identifier{"raw_records"}, rawRecordColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrap(err, "db: COPY INTO raw_records")
	}
	return n, nil
}
