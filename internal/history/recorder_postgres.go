package history

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS round_history (
	id          BIGSERIAL PRIMARY KEY,
	room_id     TEXT        NOT NULL,
	deal_seq    BIGINT      NOT NULL,
	draw        BOOLEAN     NOT NULL,
	winner      TEXT        NOT NULL,
	final_base  INT         NOT NULL,
	entry       JSONB       NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS round_history_room_idx ON round_history (room_id, id DESC);
`

type pgRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder 建表（如果不存在）后返回
func NewPostgresRecorder(ctx context.Context, db *sql.DB) (Recorder, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Wrap(err, "create round_history")
	}
	return &pgRecorder{db: db}, nil
}

func (p *pgRecorder) Record(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal entry")
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO round_history (room_id, deal_seq, draw, winner, final_base, entry, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.RoomID, int64(e.DealSeq), e.Result.Draw, string(e.Result.Winner), e.Result.FinalBase, data, e.RecordedAt,
	)
	return errors.Wrapf(err, "insert round %s/%d", e.RoomID, e.DealSeq)
}

func (p *pgRecorder) Recent(ctx context.Context, roomID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = memKeep
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT entry FROM round_history WHERE room_id = $1 ORDER BY id DESC LIMIT $2`, roomID, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "query history %s", roomID)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scan history")
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, errors.Wrap(err, "decode history")
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "iterate history")
}
