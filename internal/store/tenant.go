package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wachplan-io/wachplan/internal/domain"
)

type TenantStore struct {
	db *pgxpool.Pool
}

func NewTenantStore(db *pgxpool.Pool) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) Create(ctx context.Context, t *domain.Tenant) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO tenants (id, display_name, subdomain, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		t.ID, t.DisplayName, t.Subdomain, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *TenantStore) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.getWhere(ctx, `id = $1`, id)
}

func (s *TenantStore) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	return s.getWhere(ctx, `subdomain = $1`, subdomain)
}

func (s *TenantStore) getWhere(ctx context.Context, where string, arg any) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := s.db.QueryRow(ctx,
		`SELECT id, display_name, subdomain, status, created_at, updated_at
		 FROM tenants WHERE `+where,
		arg,
	).Scan(&t.ID, &t.DisplayName, &t.Subdomain, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TenantStore) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, display_name, subdomain, status, created_at, updated_at
		 FROM tenants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		if err := rows.Scan(&t.ID, &t.DisplayName, &t.Subdomain, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
