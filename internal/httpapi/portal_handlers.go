package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"atelierhq.io/internal/authz"
	"atelierhq.io/internal/portal"
)

type createOrganizationRequest struct {
	Name string `json:"name"`
}

type createOrderRequest struct {
	Reference string `json:"reference"`
	Costume   string `json:"costume"`
	Notes     string `json:"notes"`
}

func orgParams(orgID string) map[string]string {
	return map[string]string{authz.OrganizationParam: orgID}
}

func (a *API) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !a.authorize(w, r, PermOrganizationsManage, nil) {
			return
		}
		orgs, err := a.portal.ListOrganizations(r.Context())
		if err != nil {
			handlePortalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"organizations": orgs})
	case http.MethodPost:
		if !a.authorize(w, r, PermOrganizationsManage, nil) {
			return
		}
		var req createOrganizationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		org, err := a.portal.CreateOrganization(r.Context(), req.Name)
		if err != nil {
			handlePortalError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/v1/organizations/%s", org.ID))
		writeJSON(w, http.StatusCreated, org)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleOrganizationScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/organizations/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	orgID := parts[0]

	switch {
	case len(parts) == 1:
		a.handleOrganizationByID(w, r, orgID)
	case len(parts) == 2 && parts[1] == "orders":
		a.handleOrganizationOrders(w, r, orgID)
	case len(parts) == 2 && parts[1] == "invoices":
		a.handleOrganizationInvoices(w, r, orgID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleOrganizationByID(w http.ResponseWriter, r *http.Request, orgID string) {
	switch r.Method {
	case http.MethodGet:
		if !a.authorize(w, r, PermOrganizationsManage, orgParams(orgID)) {
			return
		}
		org, err := a.portal.GetOrganization(r.Context(), orgID)
		if err != nil {
			handlePortalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, org)
	case http.MethodDelete:
		if !a.authorize(w, r, PermOrganizationsManage, orgParams(orgID)) {
			return
		}
		if err := a.portal.DeleteOrganization(r.Context(), orgID); err != nil {
			handlePortalError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) handleOrganizationOrders(w http.ResponseWriter, r *http.Request, orgID string) {
	switch r.Method {
	case http.MethodGet:
		if !a.authorize(w, r, PermOrdersRead, orgParams(orgID)) {
			return
		}
		orders, err := a.portal.ListOrdersByOrganization(r.Context(), orgID)
		if err != nil {
			handlePortalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
	case http.MethodPost:
		if !a.authorize(w, r, PermOrdersManage, orgParams(orgID)) {
			return
		}
		var req createOrderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		order, err := a.portal.CreateOrder(r.Context(), orgID, req.Reference, req.Costume, req.Notes)
		if err != nil {
			handlePortalError(w, r, err)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/v1/orders/%s", order.ID))
		writeJSON(w, http.StatusCreated, order)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleOrganizationInvoices(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.authorize(w, r, PermInvoicesRead, orgParams(orgID)) {
		return
	}
	invoices, err := a.portal.ListInvoicesByOrganization(r.Context(), orgID)
	if err != nil {
		handlePortalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

// handleOrderResource serves /v1/orders/{id} and /v1/orders/{id}/advance.
// The target organization arrives as the organizationId query parameter;
// when the caller omits it, the engine treats the access as unscoped.
func (a *API) handleOrderResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	orderID := parts[0]

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		if !a.authorize(w, r, PermOrdersRead, nil) {
			return
		}
		order, err := a.portal.GetOrder(r.Context(), orderID)
		if err != nil {
			handlePortalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	case len(parts) == 2 && parts[1] == "advance":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		if !a.authorize(w, r, PermOrdersManage, nil) {
			return
		}
		order, err := a.portal.AdvanceOrderStage(r.Context(), orderID)
		if err != nil {
			handlePortalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func handlePortalError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, portal.ErrInvalidInput), errors.Is(err, portal.ErrFinalStage):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, portal.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, portal.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
