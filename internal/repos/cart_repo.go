package repos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"shopfront/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartItemRow struct {
	ProductID  string         `db:"product_id"`
	Name       string         `db:"name"`
	UnitPrice  float64        `db:"unit_price"`
	ImagesJSON string         `db:"images_json"`
	ShopID     sql.NullString `db:"shop_id"`
	ShopName   string         `db:"shop_name"`
	Qty        int            `db:"qty"`
}

// Image returns the first stored image, or "" when none decode.
func (r CartItemRow) Image() string {
	var imgs []string
	if err := json.Unmarshal([]byte(r.ImagesJSON), &imgs); err != nil || len(imgs) == 0 {
		return ""
	}
	return imgs[0]
}

func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// UpsertItem appends a line, or adds its quantity to the existing line for the
// same product. Name, price, images and shop are refreshed from the new line.
func (r *CartRepo) UpsertItem(cartID string, it domain.CartLineItem) error {
	images, err := json.Marshal(it.Images)
	if err != nil {
		return err
	}
	var shopID sql.NullString
	if it.Shop.ID != nil {
		shopID = sql.NullString{String: *it.Shop.ID, Valid: true}
	}
	_, err = r.db.Exec(`
		INSERT INTO cart_items(cart_id,product_id,name,unit_price,images_json,shop_id,shop_name,qty,created_at)
		VALUES(?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,product_id) DO UPDATE
		SET qty = cart_items.qty + excluded.qty,
		    name = excluded.name,
		    unit_price = excluded.unit_price,
		    images_json = excluded.images_json,
		    shop_id = excluded.shop_id,
		    shop_name = excluded.shop_name,
		    updated_at = CURRENT_TIMESTAMP
	`, cartID, it.ProductID, it.Name, it.UnitPrice, string(images), shopID, it.Shop.Name, it.Quantity)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE carts SET updated_at=? WHERE id=?`, time.Now().Format(time.RFC3339), cartID)
	return err
}

func (r *CartRepo) Items(cartID string) ([]CartItemRow, error) {
	rows := []CartItemRow{}
	err := r.db.Select(&rows, `
	  SELECT product_id, name, unit_price, images_json, shop_id, shop_name, qty
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY created_at, product_id
	`, cartID)
	return rows, err
}
