package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/wachplan-io/wachplan/internal/domain"
)

func setupEmployeeTest() (*EmployeeService, *mockEmployeeStore, *mockTenantStore) {
	employees := newMockEmployeeStore()
	tenants := newMockTenantStore("acme", "bonn", "admin")
	codec := PseudoCredentials{Domain: "wachplan.app"}
	return NewEmployeeService(employees, tenants, codec, testLogger()), employees, tenants
}

func TestEmployeeService_CreateWithEmail(t *testing.T) {
	svc, employees, _ := setupEmployeeTest()

	rec := &domain.EmployeeRecord{
		TenantID: "acme",
		Email:    "M.Mustermann@Wache-Bonn.DE",
		Role:     "Wachleitung",
	}
	if err := svc.Create(context.Background(), rec); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rec.Email != "m.mustermann@wache-bonn.de" {
		t.Fatalf("expected lowercased email, got %q", rec.Email)
	}
	if rec.Role != domain.RoleWachleitung {
		t.Fatalf("expected normalized role, got %q", rec.Role)
	}
	if !rec.Active {
		t.Fatal("new employees must start active")
	}
	if rec.PseudoEmail != "" {
		t.Fatalf("no pseudo email expected, got %q", rec.PseudoEmail)
	}
	if _, ok := employees.byID[rec.ID]; !ok {
		t.Fatal("record was not persisted")
	}
}

func TestEmployeeService_CreateDerivesPseudoEmail(t *testing.T) {
	svc, _, _ := setupEmployeeTest()

	rec := &domain.EmployeeRecord{
		TenantID:       "acme",
		EmployeeNumber: "4711",
		Role:           "user",
	}
	if err := svc.Create(context.Background(), rec); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.PseudoEmail != "4711@acme.wachplan.app" {
		t.Fatalf("unexpected pseudo email %q", rec.PseudoEmail)
	}
}

func TestEmployeeService_CreateRequiresEmployeeNumber(t *testing.T) {
	svc, _, _ := setupEmployeeTest()

	rec := &domain.EmployeeRecord{TenantID: "acme", Role: "user"}
	if err := svc.Create(context.Background(), rec); !errors.Is(err, ErrEmployeeNumberRequired) {
		t.Fatalf("expected ErrEmployeeNumberRequired, got %v", err)
	}
}

func TestEmployeeService_CreateUnknownTenant(t *testing.T) {
	svc, _, _ := setupEmployeeTest()

	rec := &domain.EmployeeRecord{TenantID: "ghost", Email: "a@example.org"}
	if err := svc.Create(context.Background(), rec); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestEmployeeService_CreateRejectsReservedDomain(t *testing.T) {
	svc, _, _ := setupEmployeeTest()

	rec := &domain.EmployeeRecord{TenantID: "acme", Email: "4711@acme.wachplan.app"}
	if err := svc.Create(context.Background(), rec); !errors.Is(err, ErrReservedEmailDomain) {
		t.Fatalf("expected ErrReservedEmailDomain, got %v", err)
	}
}

func TestEmployeeService_CreateRejectsDuplicateEmail(t *testing.T) {
	svc, employees, _ := setupEmployeeTest()

	existing := activeEmployee("acme", domain.RoleUser)
	existing.Email = "a@example.org"
	employees.emailInTenant[employeeKey("acme", "a@example.org")] = []domain.EmployeeRecord{existing}

	rec := &domain.EmployeeRecord{TenantID: "acme", Email: "a@example.org"}
	if err := svc.Create(context.Background(), rec); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestEmployeeService_UpdateRoleAndActive(t *testing.T) {
	svc, employees, _ := setupEmployeeTest()

	rec := activeEmployee("acme", domain.RoleUser)
	employees.byID[rec.ID] = rec

	role := "ADMIN"
	active := false
	updated, err := svc.Update(context.Background(), rec.ID, "acme", UpdateInput{Role: &role, Active: &active})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Role != domain.RoleAdmin {
		t.Fatalf("expected normalized admin role, got %q", updated.Role)
	}
	if updated.Active {
		t.Fatal("expected record deactivated")
	}
	if stored := employees.byID[rec.ID]; stored.Active {
		t.Fatal("deactivation was not persisted")
	}
}

func TestEmployeeService_UpdateEmailChecksUniqueness(t *testing.T) {
	svc, employees, _ := setupEmployeeTest()

	rec := activeEmployee("acme", domain.RoleUser)
	rec.Email = "old@example.org"
	employees.byID[rec.ID] = rec

	other := activeEmployee("acme", domain.RoleUser)
	other.Email = "taken@example.org"
	employees.emailInTenant[employeeKey("acme", "taken@example.org")] = []domain.EmployeeRecord{other}

	email := "taken@example.org"
	_, err := svc.Update(context.Background(), rec.ID, "acme", UpdateInput{Email: &email})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Re-submitting the record's own email is not a conflict.
	employees.emailInTenant[employeeKey("acme", "old@example.org")] = []domain.EmployeeRecord{rec}
	own := "old@example.org"
	if _, err := svc.Update(context.Background(), rec.ID, "acme", UpdateInput{Email: &own}); err != nil {
		t.Fatalf("expected no error for unchanged email, got %v", err)
	}
}

func TestEmployeeService_UpdateNotFound(t *testing.T) {
	svc, _, _ := setupEmployeeTest()

	active := true
	_, err := svc.Update(context.Background(), uuid.New(), "acme", UpdateInput{Active: &active})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}
