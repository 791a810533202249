package repos

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Carts (session keyed)
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id     TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id  TEXT NOT NULL,
  name        TEXT NOT NULL,
  unit_price  NUMERIC NOT NULL,
  images_json TEXT NOT NULL DEFAULT '[]',
  shop_id     TEXT,
  shop_name   TEXT NOT NULL DEFAULT '',
  qty INTEGER NOT NULL CHECK (qty >= 1),
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, product_id)
);

-- Sell-offer image drafts
CREATE TABLE IF NOT EXISTS offer_drafts(
  session_id  TEXT NOT NULL,
  product_id  TEXT NOT NULL,
  images_json TEXT NOT NULL DEFAULT '[]',
  updated_at  TEXT,
  PRIMARY KEY (session_id, product_id)
);

-- Request lifecycle per flow key (purchase:<sid>:<pid>, offer:<sid>:<pid>)
CREATE TABLE IF NOT EXISTS flow_states(
  flow_key   TEXT PRIMARY KEY,
  state      TEXT NOT NULL CHECK (state IN ('IDLE','PROCESSING','SUCCEEDED','FAILED')),
  message    TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}
