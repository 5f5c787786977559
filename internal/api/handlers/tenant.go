package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/wachplan-io/wachplan/internal/domain"
)

type TenantHandler struct {
	store domain.TenantStore
}

func NewTenantHandler(store domain.TenantStore) *TenantHandler {
	return &TenantHandler{store: store}
}

// tenantIDPattern keeps tenant ids usable as subdomain labels.
var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

var reservedTenantIDs = map[string]struct{}{
	"www":   {},
	"login": {},
	"admin": {},
}

type createTenantRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Subdomain   string `json:"subdomain,omitempty"`
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := strings.ToLower(strings.TrimSpace(req.ID))
	if !tenantIDPattern.MatchString(id) {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	if _, reserved := reservedTenantIDs[id]; reserved {
		writeError(w, http.StatusBadRequest, "tenant id is reserved")
		return
	}
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "display_name is required")
		return
	}

	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))
	if subdomain == "" {
		subdomain = id
	}

	tenant := &domain.Tenant{
		ID:          id,
		DisplayName: req.DisplayName,
		Subdomain:   subdomain,
		Status:      domain.TenantStatusActive,
	}

	if err := h.store.Create(r.Context(), tenant); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create tenant")
		return
	}

	writeJSON(w, http.StatusCreated, tenant)
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}
	if tenants == nil {
		tenants = []domain.Tenant{}
	}
	writeJSON(w, http.StatusOK, tenants)
}
