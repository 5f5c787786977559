package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wachplan-io/wachplan/internal/domain"
	"github.com/wachplan-io/wachplan/internal/store"
	"go.uber.org/zap"
)

var (
	// ErrIdentityNotFound means no lookup strategy matched; the caller
	// treats the subject as a guest scoped to the requested tenant.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrEmployeeInactive means a record matched but is deactivated; the
	// caller must force a sign-out and grant no role.
	ErrEmployeeInactive = errors.New("employee record inactive")
	// ErrUnauthorizedTenant means the record lives in a different tenant
	// than requested and the role carries no elevation right.
	ErrUnauthorizedTenant = errors.New("tenant access unauthorized")
	// ErrResolutionFailed wraps store read failures and timeouts. It is
	// retryable and must never be collapsed into ErrIdentityNotFound.
	ErrResolutionFailed = errors.New("identity resolution failed")
)

// lookupMatch is one employee record found by a strategy, annotated with
// the tenant that owns it and whether it came from the legacy record set.
type lookupMatch struct {
	record   domain.EmployeeRecord
	tenantID string
	legacy   bool
}

// lookupStrategy is one step of the ordered resolution chain. attempt
// returns every record it found; the driver takes the first and logs the
// rest. skip short-circuits strategies whose inputs are absent.
type lookupStrategy struct {
	name    string
	skip    func(subjectUID, subjectEmail string) bool
	attempt func(ctx context.Context, tenantID, subjectUID, subjectEmail string) ([]lookupMatch, error)
}

// IdentityService resolves an authenticated subject to a Principal. The
// subject id and email arrive pre-verified from the authentication
// gateway; this service only decides who that subject is inside the
// platform and under which tenant and role they act.
type IdentityService struct {
	employees domain.EmployeeStore
	legacy    domain.LegacyEmployeeStore
	elevation *ElevationPolicy
	logger    *zap.Logger

	// storeTimeout bounds each strategy's read so a slow store surfaces as
	// ErrResolutionFailed instead of masquerading as "no match".
	storeTimeout time.Duration

	strategies []lookupStrategy
}

func NewIdentityService(
	employees domain.EmployeeStore,
	legacy domain.LegacyEmployeeStore,
	elevation *ElevationPolicy,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *IdentityService {
	s := &IdentityService{
		employees:    employees,
		legacy:       legacy,
		elevation:    elevation,
		storeTimeout: storeTimeout,
		logger:       logger,
	}

	// Ordered chain; first non-empty result wins and later strategies are
	// never attempted. Adding or removing a legacy fallback is a one-line
	// edit here.
	s.strategies = []lookupStrategy{
		{name: "employee_by_key", attempt: s.employeeByKey},
		{name: "legacy_by_key", attempt: s.legacyByKey},
		{name: "employee_uid_query", attempt: s.employeeUIDQuery},
		{name: "employee_uid_cross_tenant", attempt: s.employeeUIDCrossTenant},
		{name: "employee_email_cross_tenant", skip: skipWithoutEmail, attempt: s.employeeEmailCrossTenant},
		{name: "legacy_email_cross_tenant", skip: skipWithoutEmail, attempt: s.legacyEmailCrossTenant},
	}

	return s
}

func skipWithoutEmail(_, subjectEmail string) bool {
	return subjectEmail == ""
}

// Resolve runs the strategy chain for the authenticated subject against the
// requested tenant and returns the Principal the session acts under.
//
// Side effect: the matched record's uid is rebound to the subject uid on
// every successful resolution. Concurrent logins for the same employee race
// on that write and the last one wins; that is documented behavior, not a
// bug to fix here.
func (s *IdentityService) Resolve(ctx context.Context, requestedTenant, subjectUID, subjectEmail string) (*domain.Principal, error) {
	match, strategyName, err := s.runChain(ctx, requestedTenant, subjectUID, subjectEmail)
	if err != nil {
		return nil, err
	}
	if match == nil {
		s.logger.Info("identity not found",
			zap.String("requested_tenant", requestedTenant),
			zap.String("subject_uid", subjectUID),
		)
		return nil, ErrIdentityNotFound
	}

	if !match.record.Active {
		s.logger.Warn("inactive employee rejected",
			zap.String("tenant_id", match.tenantID),
			zap.String("record_id", match.record.ID.String()),
			zap.String("strategy", strategyName),
		)
		return nil, ErrEmployeeInactive
	}

	role := domain.NormalizeRole(string(match.record.Role))

	finalTenant, finalRole, elevated, err := s.elevation.Decide(ctx, requestedTenant, match.tenantID, role)
	if err != nil {
		return nil, err
	}

	s.bindUID(ctx, match, subjectUID)

	s.logger.Info("identity resolved",
		zap.String("strategy", strategyName),
		zap.String("tenant_id", finalTenant),
		zap.String("role", string(finalRole)),
		zap.Bool("elevated", elevated),
	)

	return &domain.Principal{
		UID:      subjectUID,
		TenantID: finalTenant,
		Role:     finalRole,
		Elevated: elevated,
	}, nil
}

// runChain evaluates strategies strictly in order. A store error aborts the
// whole resolution: falling through on error would convert a dependency
// outage into a wrong "not found" and a silent privilege loss.
func (s *IdentityService) runChain(ctx context.Context, requestedTenant, subjectUID, subjectEmail string) (*lookupMatch, string, error) {
	for _, strat := range s.strategies {
		if strat.skip != nil && strat.skip(subjectUID, subjectEmail) {
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		matches, err := strat.attempt(attemptCtx, requestedTenant, subjectUID, subjectEmail)
		cancel()
		if err != nil {
			s.logger.Error("lookup strategy failed",
				zap.String("strategy", strat.name),
				zap.Error(err),
			)
			return nil, "", fmt.Errorf("%w: %s: %v", ErrResolutionFailed, strat.name, err)
		}
		if len(matches) == 0 {
			continue
		}

		if len(matches) > 1 {
			tenants := make([]string, 0, len(matches))
			for _, m := range matches {
				tenants = append(tenants, m.tenantID)
			}
			// First match wins for compatibility with the previous system;
			// the collision itself is worth a queryable event.
			s.logger.Warn("duplicate identity matches",
				zap.String("strategy", strat.name),
				zap.Int("count", len(matches)),
				zap.Strings("tenants", tenants),
			)
		}

		m := matches[0]
		return &m, strat.name, nil
	}
	return nil, "", nil
}

// bindUID merge-writes the authenticated uid into the matched record. A
// failed bind is logged but does not fail the login; the next successful
// login will retry it.
func (s *IdentityService) bindUID(ctx context.Context, match *lookupMatch, subjectUID string) {
	var err error
	if match.legacy {
		err = s.legacy.BindUID(ctx, match.record.ID, subjectUID)
	} else {
		err = s.employees.BindUID(ctx, match.record.ID, subjectUID)
	}
	if err != nil {
		s.logger.Warn("uid bind failed",
			zap.String("record_id", match.record.ID.String()),
			zap.Bool("legacy", match.legacy),
			zap.Error(err),
		)
	}
}

func (s *IdentityService) employeeByKey(ctx context.Context, tenantID, subjectUID, _ string) ([]lookupMatch, error) {
	rec, err := s.employees.GetByUID(ctx, tenantID, subjectUID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []lookupMatch{{record: *rec, tenantID: tenantID}}, nil
}

func (s *IdentityService) legacyByKey(ctx context.Context, tenantID, subjectUID, _ string) ([]lookupMatch, error) {
	rec, err := s.legacy.GetByUID(ctx, tenantID, subjectUID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []lookupMatch{{record: *rec, tenantID: tenantID, legacy: true}}, nil
}

func (s *IdentityService) employeeUIDQuery(ctx context.Context, tenantID, subjectUID, _ string) ([]lookupMatch, error) {
	recs, err := s.employees.FindByUID(ctx, tenantID, subjectUID)
	if err != nil {
		return nil, err
	}
	matches := make([]lookupMatch, 0, len(recs))
	for _, r := range recs {
		matches = append(matches, lookupMatch{record: r, tenantID: tenantID})
	}
	return matches, nil
}

func (s *IdentityService) employeeUIDCrossTenant(ctx context.Context, _, subjectUID, _ string) ([]lookupMatch, error) {
	found, err := s.employees.FindByUIDAcrossTenants(ctx, subjectUID)
	if err != nil {
		return nil, err
	}
	return crossTenantMatches(found, false), nil
}

func (s *IdentityService) employeeEmailCrossTenant(ctx context.Context, _, _, subjectEmail string) ([]lookupMatch, error) {
	found, err := s.employees.FindByEmailAcrossTenants(ctx, subjectEmail)
	if err != nil {
		return nil, err
	}
	return crossTenantMatches(found, false), nil
}

func (s *IdentityService) legacyEmailCrossTenant(ctx context.Context, _, _, subjectEmail string) ([]lookupMatch, error) {
	found, err := s.legacy.FindByEmailAcrossTenants(ctx, subjectEmail)
	if err != nil {
		return nil, err
	}
	return crossTenantMatches(found, true), nil
}

func crossTenantMatches(found []domain.EmployeeMatch, legacy bool) []lookupMatch {
	matches := make([]lookupMatch, 0, len(found))
	for _, f := range found {
		matches = append(matches, lookupMatch{record: f.Record, tenantID: f.TenantID, legacy: legacy})
	}
	return matches
}
