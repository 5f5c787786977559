package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wachplan-io/wachplan/internal/domain"
)

type OverrideStore struct {
	db *pgxpool.Pool
}

func NewOverrideStore(db *pgxpool.Pool) *OverrideStore {
	return &OverrideStore{db: db}
}

func (s *OverrideStore) ListByTenant(ctx context.Context, tenantID string) ([]domain.TenantModuleOverride, error) {
	rows, err := s.db.Query(ctx,
		`SELECT tenant_id, module_id, enabled
		 FROM tenant_modules WHERE tenant_id = $1`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []domain.TenantModuleOverride
	for rows.Next() {
		var o domain.TenantModuleOverride
		if err := rows.Scan(&o.TenantID, &o.ModuleID, &o.Enabled); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (s *OverrideStore) Set(ctx context.Context, o domain.TenantModuleOverride) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO tenant_modules (tenant_id, module_id, enabled)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (tenant_id, module_id) DO UPDATE
		 SET enabled = EXCLUDED.enabled, updated_at = NOW()`,
		o.TenantID, o.ModuleID, o.Enabled)
	return err
}

// Clear deletes the override row; absence of a row is the unset tri-state.
func (s *OverrideStore) Clear(ctx context.Context, tenantID, moduleID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM tenant_modules WHERE tenant_id = $1 AND module_id = $2`,
		tenantID, moduleID)
	return err
}
