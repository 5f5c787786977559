package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wachplan-io/wachplan/internal/domain"
)

// LegacyEmployeeStore reads the pre-migration record set. Same row shape as
// employees, kept in its own table so the old data never mixes with records
// written by the current admin surface.
type LegacyEmployeeStore struct {
	db *pgxpool.Pool
}

func NewLegacyEmployeeStore(db *pgxpool.Pool) *LegacyEmployeeStore {
	return &LegacyEmployeeStore{db: db}
}

func (s *LegacyEmployeeStore) GetByUID(ctx context.Context, tenantID, uid string) (*domain.EmployeeRecord, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM legacy_employees
		 WHERE tenant_id = $1 AND uid = $2
		 ORDER BY created_at LIMIT 1`,
		tenantID, uid)
	return scanEmployee(row)
}

func (s *LegacyEmployeeStore) FindByEmailAcrossTenants(ctx context.Context, email string) ([]domain.EmployeeMatch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+employeeColumns+` FROM legacy_employees WHERE email = $1`,
		email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (s *LegacyEmployeeStore) BindUID(ctx context.Context, id uuid.UUID, uid string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE legacy_employees SET uid = $1, last_login_at = NOW() WHERE id = $2`,
		uid, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
