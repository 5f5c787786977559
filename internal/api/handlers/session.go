package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wachplan-io/wachplan/internal/api/middleware"
	"github.com/wachplan-io/wachplan/internal/domain"
	"github.com/wachplan-io/wachplan/internal/service"
)

// SessionHandler resolves the gateway-authenticated subject against the
// tenant derived from the request host and reports the principal plus the
// modules it may see. The UI calls it once per authentication event and
// once per navigation refresh.
type SessionHandler struct {
	identity       *service.IdentityService
	entitlements   *service.EntitlementService
	platformDomain string
}

func NewSessionHandler(identity *service.IdentityService, entitlements *service.EntitlementService, platformDomain string) *SessionHandler {
	return &SessionHandler{
		identity:       identity,
		entitlements:   entitlements,
		platformDomain: platformDomain,
	}
}

type sessionResponse struct {
	Principal    domain.Principal          `json:"principal"`
	Guest        bool                      `json:"guest"`
	ForceSignOut bool                      `json:"force_sign_out,omitempty"`
	Reason       string                    `json:"reason,omitempty"`
	Modules      []domain.ModuleDefinition `json:"modules"`
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, status, err := h.resolve(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Modules returns only the visible-module list; same resolution path as
// the full session payload.
func (h *SessionHandler) Modules(w http.ResponseWriter, r *http.Request) {
	resp, status, err := h.resolve(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"modules": resp.Modules})
}

func (h *SessionHandler) resolve(r *http.Request) (*sessionResponse, int, error) {
	subject := middleware.SubjectFromContext(r.Context())
	if subject == nil {
		return nil, http.StatusUnauthorized, errors.New("unauthorized")
	}

	tenantID := service.ResolveTenant(r.Host, h.platformDomain)

	principal, err := h.identity.Resolve(r.Context(), tenantID, subject.UID, subject.Email)
	switch {
	case err == nil:
		modules, err := h.entitlements.VisibleModules(r.Context(), *principal)
		if err != nil {
			return nil, http.StatusServiceUnavailable, errors.New("failed to load modules")
		}
		return &sessionResponse{Principal: *principal, Modules: modules}, 0, nil

	case errors.Is(err, service.ErrIdentityNotFound):
		// Unknown subject: guest session scoped to the requested tenant.
		guest := guestPrincipal(tenantID)
		modules, merr := h.entitlements.VisibleModules(r.Context(), guest)
		if merr != nil {
			return nil, http.StatusServiceUnavailable, errors.New("failed to load modules")
		}
		return &sessionResponse{Principal: guest, Guest: true, Modules: modules}, 0, nil

	case errors.Is(err, service.ErrEmployeeInactive):
		return &sessionResponse{
			Principal:    guestPrincipal(tenantID),
			Guest:        true,
			ForceSignOut: true,
			Reason:       "inactive",
			Modules:      []domain.ModuleDefinition{},
		}, 0, nil

	case errors.Is(err, service.ErrUnauthorizedTenant):
		return &sessionResponse{
			Principal:    guestPrincipal(tenantID),
			Guest:        true,
			ForceSignOut: true,
			Reason:       "unauthorized",
			Modules:      []domain.ModuleDefinition{},
		}, 0, nil

	case errors.Is(err, service.ErrResolutionFailed) || errors.Is(err, context.DeadlineExceeded):
		// Retryable; must not be presented as a guest downgrade.
		return nil, http.StatusServiceUnavailable, errors.New("identity resolution failed, retry")

	default:
		return nil, http.StatusInternalServerError, errors.New("internal error")
	}
}

func guestPrincipal(tenantID string) domain.Principal {
	return domain.Principal{TenantID: tenantID, Role: domain.RoleUser}
}
