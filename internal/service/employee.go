package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/wachplan-io/wachplan/internal/domain"
	"github.com/wachplan-io/wachplan/internal/store"
	"go.uber.org/zap"
)

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrTenantNotFound         = errors.New("tenant not found")
	ErrEmailTaken             = errors.New("email already used in this tenant")
	ErrReservedEmailDomain    = errors.New("email must not use the reserved platform domain")
	ErrEmployeeNumberRequired = errors.New("employee_number is required when no email is given")
)

// EmployeeService manages employee records for the admin surface. The
// resolution chain tolerates legacy duplicates, but new writes go through
// explicit pre-write checks so the "one email per tenant" and "real emails
// never look like pseudo-credentials" invariants hold for everything
// created from here on.
type EmployeeService struct {
	employees domain.EmployeeStore
	tenants   domain.TenantStore
	codec     PseudoCredentials
	logger    *zap.Logger
}

func NewEmployeeService(employees domain.EmployeeStore, tenants domain.TenantStore, codec PseudoCredentials, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		tenants:   tenants,
		codec:     codec,
		logger:    logger,
	}
}

// Create validates and persists a new employee record. Employees without a
// real email get a pseudo-credential derived from their employee number.
func (s *EmployeeService) Create(ctx context.Context, e *domain.EmployeeRecord) error {
	e.TenantID = strings.TrimSpace(e.TenantID)
	e.Email = strings.TrimSpace(strings.ToLower(e.Email))
	e.EmployeeNumber = strings.TrimSpace(e.EmployeeNumber)
	e.Role = domain.NormalizeRole(string(e.Role))

	if _, err := s.tenants.GetByID(ctx, e.TenantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTenantNotFound
		}
		return err
	}

	if e.Email == "" {
		if e.EmployeeNumber == "" {
			return ErrEmployeeNumberRequired
		}
		e.PseudoEmail = s.codec.Encode(e.EmployeeNumber, e.TenantID)
	} else {
		if err := s.checkEmail(ctx, e.TenantID, e.Email, uuid.Nil); err != nil {
			return err
		}
	}

	e.Active = true
	if err := s.employees.Create(ctx, e); err != nil {
		return err
	}

	s.logger.Info("employee created",
		zap.String("tenant_id", e.TenantID),
		zap.String("record_id", e.ID.String()),
		zap.String("role", string(e.Role)),
		zap.Bool("pseudo", e.Email == ""),
	)
	return nil
}

func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*domain.EmployeeRecord, error) {
	rec, err := s.employees.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return rec, nil
}

// UpdateInput carries the mutable employee fields; nil means unchanged.
type UpdateInput struct {
	Email  *string
	Role   *string
	Active *bool
}

func (s *EmployeeService) Update(ctx context.Context, id uuid.UUID, tenantID string, in UpdateInput) (*domain.EmployeeRecord, error) {
	rec, err := s.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email != "" && email != rec.Email {
			if err := s.checkEmail(ctx, tenantID, email, rec.ID); err != nil {
				return nil, err
			}
		}
		rec.Email = email
	}
	if in.Role != nil {
		rec.Role = domain.NormalizeRole(*in.Role)
	}
	if in.Active != nil {
		rec.Active = *in.Active
	}

	if err := s.employees.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("employee updated",
		zap.String("tenant_id", tenantID),
		zap.String("record_id", rec.ID.String()),
		zap.Bool("active", rec.Active),
	)
	return rec, nil
}

// checkEmail enforces the two invariants the previous system only assumed:
// an email is unique within its tenant, and a real email never ends with
// the reserved platform suffix.
func (s *EmployeeService) checkEmail(ctx context.Context, tenantID, email string, selfID uuid.UUID) error {
	if s.codec.IsPseudo(email) {
		return ErrReservedEmailDomain
	}
	existing, err := s.employees.FindByEmail(ctx, tenantID, email)
	if err != nil {
		return err
	}
	for _, rec := range existing {
		if rec.ID != selfID {
			return ErrEmailTaken
		}
	}
	return nil
}
