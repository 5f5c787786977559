package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wachplan-io/wachplan/internal/domain"
	"github.com/wachplan-io/wachplan/internal/service"
)

// ModuleAdminHandler manages per-tenant module overrides.
type ModuleAdminHandler struct {
	entitlements *service.EntitlementService
}

func NewModuleAdminHandler(entitlements *service.EntitlementService) *ModuleAdminHandler {
	return &ModuleAdminHandler{entitlements: entitlements}
}

// setOverrideRequest carries the tri-state: true/false write an explicit
// record, null clears it back to unset.
type setOverrideRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *ModuleAdminHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	moduleID := chi.URLParam(r, "moduleID")

	var req setOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Enabled == nil {
		if err := h.entitlements.ClearOverride(r.Context(), tenantID, moduleID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to clear override")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"tenant_id": tenantID,
			"module_id": moduleID,
			"state":     domain.TriUnset.String(),
		})
		return
	}

	o := domain.TenantModuleOverride{TenantID: tenantID, ModuleID: moduleID, Enabled: *req.Enabled}
	if err := h.entitlements.SetOverride(r.Context(), o); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set override")
		return
	}

	state := domain.TriDisabled
	if o.Enabled {
		state = domain.TriEnabled
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"tenant_id": tenantID,
		"module_id": moduleID,
		"state":     state.String(),
	})
}

// ListOverrides returns the raw override rows plus the effective tri-state
// of every active catalog module for the tenant.
func (h *ModuleAdminHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	overrides, err := h.entitlements.ListOverrides(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list overrides")
		return
	}
	if overrides == nil {
		overrides = []domain.TenantModuleOverride{}
	}

	states, err := h.entitlements.ModuleStates(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute module states")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overrides": overrides,
		"modules":   states,
	})
}
