package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wachplan-io/wachplan/internal/domain"
)

const employeeColumns = `id, tenant_id, uid, email, pseudo_email, employee_number, role, active, last_login_at, created_at, updated_at`

type EmployeeStore struct {
	db *pgxpool.Pool
}

func NewEmployeeStore(db *pgxpool.Pool) *EmployeeStore {
	return &EmployeeStore{db: db}
}

func (s *EmployeeStore) Create(ctx context.Context, e *domain.EmployeeRecord) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO employees (tenant_id, uid, email, pseudo_email, employee_number, role, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		e.TenantID, nullable(e.UID), nullable(e.Email), nullable(e.PseudoEmail),
		nullable(e.EmployeeNumber), string(e.Role), e.Active,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (s *EmployeeStore) GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*domain.EmployeeRecord, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1 AND tenant_id = $2`,
		id, tenantID)
	return scanEmployee(row)
}

func (s *EmployeeStore) GetByUID(ctx context.Context, tenantID, uid string) (*domain.EmployeeRecord, error) {
	// Keyed lookup: post-migration records use the subject uid as their
	// document key, so at most one row matches.
	row := s.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees
		 WHERE tenant_id = $1 AND uid = $2
		 ORDER BY created_at LIMIT 1`,
		tenantID, uid)
	return scanEmployee(row)
}

func (s *EmployeeStore) FindByUID(ctx context.Context, tenantID, uid string) ([]domain.EmployeeRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE tenant_id = $1 AND uid = $2`,
		tenantID, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func (s *EmployeeStore) FindByEmail(ctx context.Context, tenantID, email string) ([]domain.EmployeeRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE tenant_id = $1 AND email = $2`,
		tenantID, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func (s *EmployeeStore) FindByUIDAcrossTenants(ctx context.Context, uid string) ([]domain.EmployeeMatch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE uid = $1`,
		uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (s *EmployeeStore) FindByEmailAcrossTenants(ctx context.Context, email string) ([]domain.EmployeeMatch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE email = $1`,
		email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (s *EmployeeStore) Update(ctx context.Context, e *domain.EmployeeRecord) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE employees
		 SET email = $1, pseudo_email = $2, role = $3, active = $4, updated_at = NOW()
		 WHERE id = $5 AND tenant_id = $6`,
		nullable(e.Email), nullable(e.PseudoEmail), string(e.Role), e.Active,
		e.ID, e.TenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BindUID is a merge-write: it only touches uid and last_login_at, leaving
// every other field as-is. No concurrency check; last write wins.
func (s *EmployeeStore) BindUID(ctx context.Context, id uuid.UUID, uid string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE employees SET uid = $1, last_login_at = NOW() WHERE id = $2`,
		uid, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*domain.EmployeeRecord, error) {
	e := &domain.EmployeeRecord{}
	var uid, email, pseudoEmail, employeeNumber *string
	var role string
	err := row.Scan(&e.ID, &e.TenantID, &uid, &email, &pseudoEmail, &employeeNumber,
		&role, &e.Active, &e.LastLoginAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.UID = deref(uid)
	e.Email = deref(email)
	e.PseudoEmail = deref(pseudoEmail)
	e.EmployeeNumber = deref(employeeNumber)
	e.Role = domain.Role(role)
	return e, nil
}

func collectEmployees(rows pgx.Rows) ([]domain.EmployeeRecord, error) {
	var out []domain.EmployeeRecord
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func collectMatches(rows pgx.Rows) ([]domain.EmployeeMatch, error) {
	recs, err := collectEmployees(rows)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.EmployeeMatch, 0, len(recs))
	for _, r := range recs {
		matches = append(matches, domain.EmployeeMatch{Record: r, TenantID: r.TenantID})
	}
	return matches, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
