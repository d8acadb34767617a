// Package sqlitestore is the embedded SQLite backend for the assignment
// engine. The assistctl CLI runs on it and the engine tests use it in
// memory.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/assistcenter/internal/app/system/assignment"
	"github.com/dalemusser/assistcenter/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	sqlite3 "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicate is returned when a unique name or username is already taken.
var ErrDuplicate = errors.New("a record with this name already exists")

// Store implements assignment.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ assignment.Store = (*Store)(nil)

// Open opens (creating if needed) the database file at path and applies
// the schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := New(db)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. The pool is limited to one connection:
// SQLite has a single writer, and an in-memory database exists only on the
// connection that created it. Transactions are therefore serialized.
func New(db *sql.DB) *Store {
	db.SetMaxOpenConns(1)
	return &Store{db: db}
}

// InitSchema creates missing tables and indexes.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, GetSchemaSQL()); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// conn returns the transaction carried by ctx, or the pool.
func (s *Store) conn(ctx context.Context) execer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// Atomically runs fn in one transaction. Nested calls join the outer one.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* scanning                                                                    */
/* -------------------------------------------------------------------------- */

type scanner interface {
	Scan(dest ...any) error
}

const (
	centerCols     = `id, name, name_ci, street, city, city_ci, province, postal_code, phone, email, revision, created_at, updated_at`
	technicianCols = `id, full_name, full_name_ci, specialization, email, phone, center_id, version, created_at, updated_at`
	staffCols      = `id, username, username_ci, full_name, full_name_ci, email, created_at, updated_at`
	productCols    = `id, name, name_ci, category, staff_id, created_at, updated_at`
)

func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("corrupt id %q: %w", hex, err)
	}
	return id, nil
}

func parseRef(ns sql.NullString) (*primitive.ObjectID, error) {
	if !ns.Valid {
		return nil, nil
	}
	id, err := parseID(ns.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ref converts an optional ObjectID to a bind value (NULL when nil).
func ref(id *primitive.ObjectID) any {
	if id == nil {
		return nil
	}
	return id.Hex()
}

func scanCenter(row scanner) (models.AssistanceCenter, error) {
	var (
		c  models.AssistanceCenter
		id string
	)
	err := row.Scan(&id, &c.Name, &c.NameCI, &c.Street, &c.City, &c.CityCI, &c.Province,
		&c.PostalCode, &c.Phone, &c.Email, &c.Revision, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.AssistanceCenter{}, err
	}
	c.ID, err = parseID(id)
	return c, err
}

func scanTechnician(row scanner) (models.Technician, error) {
	var (
		t      models.Technician
		id     string
		center sql.NullString
	)
	err := row.Scan(&id, &t.FullName, &t.FullNameCI, &t.Specialization, &t.Email, &t.Phone,
		&center, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Technician{}, err
	}
	if t.ID, err = parseID(id); err != nil {
		return models.Technician{}, err
	}
	t.CenterID, err = parseRef(center)
	return t, err
}

func scanStaff(row scanner) (models.StaffMember, error) {
	var (
		m  models.StaffMember
		id string
	)
	err := row.Scan(&id, &m.Username, &m.UsernameCI, &m.FullName, &m.FullNameCI, &m.Email, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return models.StaffMember{}, err
	}
	m.ID, err = parseID(id)
	return m, err
}

func scanProduct(row scanner) (models.Product, error) {
	var (
		p     models.Product
		id    string
		staff sql.NullString
	)
	err := row.Scan(&id, &p.Name, &p.NameCI, &p.Category, &staff, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, err
	}
	if p.ID, err = parseID(id); err != nil {
		return models.Product{}, err
	}
	p.StaffID, err = parseRef(staff)
	return p, err
}

// getOne runs a single-row query and maps sql.ErrNoRows to ErrNotFound.
func getOne[T any](ctx context.Context, q execer, scan func(scanner) (T, error), what, query string, args ...any) (T, error) {
	v, err := scan(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, assignment.ErrNotFound
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return v, nil
}

func getMany[T any](ctx context.Context, q execer, scan func(scanner) (T, error), what, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	return out, nil
}

func isUnique(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

/* -------------------------------------------------------------------------- */
/* assignment.Store readers                                                    */
/* -------------------------------------------------------------------------- */

func (s *Store) Technician(ctx context.Context, id primitive.ObjectID) (models.Technician, error) {
	return getOne(ctx, s.conn(ctx), scanTechnician, "technician",
		`SELECT `+technicianCols+` FROM technicians WHERE id = ?`, id.Hex())
}

func (s *Store) Center(ctx context.Context, id primitive.ObjectID) (models.AssistanceCenter, error) {
	return getOne(ctx, s.conn(ctx), scanCenter, "center",
		`SELECT `+centerCols+` FROM assistance_centers WHERE id = ?`, id.Hex())
}

func (s *Store) Staff(ctx context.Context, id primitive.ObjectID) (models.StaffMember, error) {
	return getOne(ctx, s.conn(ctx), scanStaff, "staff member",
		`SELECT `+staffCols+` FROM staff_members WHERE id = ?`, id.Hex())
}

func (s *Store) Product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return getOne(ctx, s.conn(ctx), scanProduct, "product",
		`SELECT `+productCols+` FROM products WHERE id = ?`, id.Hex())
}

func (s *Store) TechniciansNotAt(ctx context.Context, centerID primitive.ObjectID) ([]models.Technician, error) {
	return getMany(ctx, s.conn(ctx), scanTechnician, "technicians",
		`SELECT `+technicianCols+` FROM technicians
		 WHERE center_id IS NULL OR center_id <> ?
		 ORDER BY id`, centerID.Hex())
}

func (s *Store) TechniciansAt(ctx context.Context, centerID primitive.ObjectID) ([]models.Technician, error) {
	return getMany(ctx, s.conn(ctx), scanTechnician, "technicians",
		`SELECT `+technicianCols+` FROM technicians WHERE center_id = ? ORDER BY id`, centerID.Hex())
}

func (s *Store) CountTechniciansAt(ctx context.Context, centerID primitive.ObjectID) (int64, error) {
	var n int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM technicians WHERE center_id = ?`, centerID.Hex()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count technicians: %w", err)
	}
	return n, nil
}

func (s *Store) CenterNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	for _, id := range ids {
		var name string
		err := s.conn(ctx).QueryRowContext(ctx,
			`SELECT name FROM assistance_centers WHERE id = ?`, id.Hex()).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get center name: %w", err)
		}
		out[id] = name
	}
	return out, nil
}

func (s *Store) ProductsOf(ctx context.Context, staffID primitive.ObjectID) ([]models.Product, error) {
	return getMany(ctx, s.conn(ctx), scanProduct, "products",
		`SELECT `+productCols+` FROM products WHERE staff_id = ? ORDER BY id`, staffID.Hex())
}

func (s *Store) CountProductsOf(ctx context.Context, staffID primitive.ObjectID) (int64, error) {
	var n int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE staff_id = ?`, staffID.Hex()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

/* -------------------------------------------------------------------------- */
/* assignment.Store writers                                                    */
/* -------------------------------------------------------------------------- */

func (s *Store) SetTechnicianCenter(ctx context.Context, techID primitive.ObjectID, expectedVersion *int64, centerID *primitive.ObjectID) (models.Technician, error) {
	q := s.conn(ctx)
	now := time.Now().UTC()

	if centerID != nil {
		res, err := q.ExecContext(ctx,
			`UPDATE assistance_centers SET revision = revision + 1, updated_at = ? WHERE id = ?`,
			now, centerID.Hex())
		if err != nil {
			return models.Technician{}, fmt.Errorf("failed to touch center: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.Technician{}, assignment.ErrNotFound
		}
	}

	query := `UPDATE technicians SET center_id = ?, version = version + 1, updated_at = ? WHERE id = ?`
	args := []any{ref(centerID), now, techID.Hex()}
	if expectedVersion != nil {
		query += ` AND version = ?`
		args = append(args, *expectedVersion)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return models.Technician{}, fmt.Errorf("failed to update technician: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.Technician(ctx, techID); err != nil {
			return models.Technician{}, err
		}
		return models.Technician{}, assignment.ErrVersionMismatch
	}
	return s.Technician(ctx, techID)
}

func (s *Store) SetProductStaff(ctx context.Context, productID primitive.ObjectID, staffID *primitive.ObjectID) (models.Product, error) {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE products SET staff_id = ?, updated_at = ? WHERE id = ?`,
		ref(staffID), time.Now().UTC(), productID.Hex())
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Product{}, assignment.ErrNotFound
	}
	return s.Product(ctx, productID)
}

func (s *Store) deleteRow(ctx context.Context, table string, id primitive.ObjectID) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id.Hex())
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCenter(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteRow(ctx, "assistance_centers", id)
}

func (s *Store) DeleteTechnician(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteRow(ctx, "technicians", id)
}

func (s *Store) DeleteStaff(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteRow(ctx, "staff_members", id)
}

/* -------------------------------------------------------------------------- */
/* catalog                                                                     */
/* -------------------------------------------------------------------------- */

// CreateCenter inserts a center. A zero ID is replaced with a fresh one.
func (s *Store) CreateCenter(ctx context.Context, c models.AssistanceCenter) (models.AssistanceCenter, error) {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.NameCI = text.Fold(c.Name)
	c.CityCI = text.Fold(c.City)
	c.Revision = 0
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO assistance_centers (`+centerCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.Hex(), c.Name, c.NameCI, c.Street, c.City, c.CityCI, c.Province, c.PostalCode,
		c.Phone, c.Email, c.Revision, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUnique(err) {
			return models.AssistanceCenter{}, ErrDuplicate
		}
		return models.AssistanceCenter{}, fmt.Errorf("failed to create center: %w", err)
	}
	return c, nil
}

// CreateTechnician inserts an unassigned technician.
func (s *Store) CreateTechnician(ctx context.Context, t models.Technician) (models.Technician, error) {
	now := time.Now().UTC()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.FullNameCI = text.Fold(t.FullName)
	t.CenterID = nil
	t.Version = 0
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO technicians (`+technicianCols+`) VALUES (?, ?, ?, ?, ?, ?, NULL, 0, ?, ?)`,
		t.ID.Hex(), t.FullName, t.FullNameCI, t.Specialization, t.Email, t.Phone, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUnique(err) {
			return models.Technician{}, ErrDuplicate
		}
		return models.Technician{}, fmt.Errorf("failed to create technician: %w", err)
	}
	return t, nil
}

// CreateStaff inserts a staff member.
func (s *Store) CreateStaff(ctx context.Context, m models.StaffMember) (models.StaffMember, error) {
	now := time.Now().UTC()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.UsernameCI = text.Fold(m.Username)
	m.FullNameCI = text.Fold(m.FullName)
	m.CreatedAt, m.UpdatedAt = now, now
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO staff_members (`+staffCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.Hex(), m.Username, m.UsernameCI, m.FullName, m.FullNameCI, m.Email, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUnique(err) {
			return models.StaffMember{}, ErrDuplicate
		}
		return models.StaffMember{}, fmt.Errorf("failed to create staff member: %w", err)
	}
	return m, nil
}

// CreateProduct inserts an unassigned product.
func (s *Store) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.NameCI = text.Fold(p.Name)
	p.StaffID = nil
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO products (`+productCols+`) VALUES (?, ?, ?, ?, NULL, ?, ?)`,
		p.ID.Hex(), p.Name, p.NameCI, p.Category, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUnique(err) {
			return models.Product{}, ErrDuplicate
		}
		return models.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *Store) ListCenters(ctx context.Context) ([]models.AssistanceCenter, error) {
	return getMany(ctx, s.conn(ctx), scanCenter, "centers",
		`SELECT `+centerCols+` FROM assistance_centers ORDER BY name_ci, id`)
}

func (s *Store) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	return getMany(ctx, s.conn(ctx), scanTechnician, "technicians",
		`SELECT `+technicianCols+` FROM technicians ORDER BY full_name_ci, id`)
}

func (s *Store) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	return getMany(ctx, s.conn(ctx), scanStaff, "staff members",
		`SELECT `+staffCols+` FROM staff_members ORDER BY username_ci, id`)
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	return getMany(ctx, s.conn(ctx), scanProduct, "products",
		`SELECT `+productCols+` FROM products ORDER BY name_ci, id`)
}
