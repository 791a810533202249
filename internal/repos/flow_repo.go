package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"shopfront/internal/domain"
)

// FlowRepo stores request lifecycles in sqlite.
type FlowRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewFlowRepo(db *sqlx.DB) *FlowRepo { return &FlowRepo{db: db, now: time.Now} }

// Begin moves key to PROCESSING and reports whether this caller owns the
// flight. A PROCESSING row older than ttl is treated as abandoned.
func (r *FlowRepo) Begin(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := r.now().Unix()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO flow_states(flow_key, state, message, updated_at)
		VALUES(?, 'PROCESSING', '', ?)
		ON CONFLICT(flow_key) DO UPDATE
		SET state = 'PROCESSING', message = '', updated_at = excluded.updated_at
		WHERE flow_states.state <> 'PROCESSING' OR flow_states.updated_at <= ?
	`, key, now, now-int64(ttl/time.Second))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *FlowRepo) Finish(ctx context.Context, key string, l domain.Lifecycle) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE flow_states SET state = ?, message = ?, updated_at = ? WHERE flow_key = ?
	`, string(l.State), l.Message, r.now().Unix(), key)
	return err
}

func (r *FlowRepo) Get(ctx context.Context, key string) (domain.Lifecycle, error) {
	var row struct {
		State   string `db:"state"`
		Message string `db:"message"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT state, message FROM flow_states WHERE flow_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lifecycle{State: domain.FlowIdle}, nil
	}
	if err != nil {
		return domain.Lifecycle{}, err
	}
	return domain.Lifecycle{State: domain.FlowState(row.State), Message: row.Message}, nil
}
