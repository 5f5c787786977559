package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wachplan-io/wachplan/internal/domain"
)

type ModuleStore struct {
	db *pgxpool.Pool
}

func NewModuleStore(db *pgxpool.Pool) *ModuleStore {
	return &ModuleStore{db: db}
}

// List returns the global module catalog. Rows come back keyed by id for a
// stable catalog order; display ordering by sort_order is the entitlement
// resolver's job.
func (s *ModuleStore) List(ctx context.Context) ([]domain.ModuleDefinition, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, allowed_roles, is_free, sort_order, active
		 FROM modules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []domain.ModuleDefinition
	for rows.Next() {
		var m domain.ModuleDefinition
		if err := rows.Scan(&m.ID, &m.AllowedRoles, &m.IsFree, &m.Order, &m.Active); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}
