package sqlitestore

// SchemaSQL creates the tables used by the embedded backend. IDs are
// ObjectID hex strings so records keep the same identity as in MongoDB.
// Assignment state lives on the child rows: technicians.center_id and
// products.staff_id.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS assistance_centers (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	name_ci     TEXT NOT NULL UNIQUE,
	street      TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL DEFAULT '',
	city_ci     TEXT NOT NULL DEFAULT '',
	province    TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	revision    INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS technicians (
	id             TEXT PRIMARY KEY,
	full_name      TEXT NOT NULL,
	full_name_ci   TEXT NOT NULL,
	specialization TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	center_id      TEXT REFERENCES assistance_centers(id),
	version        INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_technicians_center ON technicians(center_id);
CREATE INDEX IF NOT EXISTS idx_technicians_name ON technicians(full_name_ci);

CREATE TABLE IF NOT EXISTS staff_members (
	id           TEXT PRIMARY KEY,
	username     TEXT NOT NULL,
	username_ci  TEXT NOT NULL UNIQUE,
	full_name    TEXT NOT NULL DEFAULT '',
	full_name_ci TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	name_ci    TEXT NOT NULL UNIQUE,
	category   TEXT NOT NULL DEFAULT '',
	staff_id   TEXT REFERENCES staff_members(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_staff ON products(staff_id);
`

// GetSchemaSQL returns the schema for tests and for InitSchema.
func GetSchemaSQL() string {
	return SchemaSQL
}
