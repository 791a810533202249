package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// OfferDraftRepo keeps the images a seller has attached to an offer that is
// not submitted yet, keyed by session and product.
type OfferDraftRepo struct{ db *sqlx.DB }

func NewOfferDraftRepo(db *sqlx.DB) *OfferDraftRepo { return &OfferDraftRepo{db: db} }

func (r *OfferDraftRepo) Images(sessionID, productID string) ([]string, error) {
	return imagesOf(r.db, sessionID, productID)
}

// Update runs fn on the current images inside one transaction and stores what
// it returns. If fn fails nothing is written.
func (r *OfferDraftRepo) Update(sessionID, productID string, fn func([]string) ([]string, error)) ([]string, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := imagesOf(tx, sessionID, productID)
	if err != nil {
		return nil, err
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	b, err := json.Marshal(next)
	if err != nil {
		return cur, err
	}
	if _, err := tx.Exec(`
		INSERT INTO offer_drafts(session_id, product_id, images_json, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(session_id, product_id) DO UPDATE
		SET images_json = excluded.images_json, updated_at = excluded.updated_at
	`, sessionID, productID, string(b), time.Now().Format(time.RFC3339)); err != nil {
		return cur, err
	}
	return next, tx.Commit()
}

func (r *OfferDraftRepo) Clear(sessionID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM offer_drafts WHERE session_id=? AND product_id=?`, sessionID, productID)
	return err
}

func imagesOf(q sqlx.Queryer, sessionID, productID string) ([]string, error) {
	var raw string
	err := sqlx.Get(q, &raw, `SELECT images_json FROM offer_drafts WHERE session_id=? AND product_id=?`, sessionID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
