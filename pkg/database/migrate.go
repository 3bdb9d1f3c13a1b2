package database

import "fmt"

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so the server can run them on every start.
func (db *DB) Migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS brands (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			poster TEXT,
			category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS flavors (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			cost_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			selling_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			brand_id INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			customer TEXT NOT NULL,
			address TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PREPARING',
			total NUMERIC(10,2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			flavor_id INTEGER NOT NULL REFERENCES flavors(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(10,2) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_brands_category_id ON brands(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_flavors_brand_id ON flavors(brand_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
	}

	db.logger.Info("Running database migrations", "statements", len(stmts))

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.logger.Error("Migration statement failed", "error", err)
			return fmt.Errorf("migration failed: %v", err)
		}
	}

	db.logger.Info("Database migrations complete")
	return nil
}
