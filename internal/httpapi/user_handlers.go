package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"lavka.org/internal/audit"
	"lavka.org/internal/auth"
)

type updateUserRequest struct {
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.createUser(w, r, "user.create", "")
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// listUsers returns all accounts, or a role-filtered page when the
// role query parameter is present.
func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("role")); raw != "" {
		role, err := auth.ParseRole(raw)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		limit, err := parsePositiveInt(q.Get("limit"), 50, 1, 1000)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		offset, err := parsePositiveInt(q.Get("offset"), 0, 0, 1<<30)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		accounts, total, err := a.accounts.ListByRole(r.Context(), role, limit, offset)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": accounts, "total": total})
		return
	}

	accounts, err := a.accounts.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": accounts})
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	path = strings.Trim(path, "/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	// Privileged creation of administrator accounts lives under the
	// same prefix.
	if path == "admin" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.createUser(w, r, "user.promote", string(auth.RoleAdmin))
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		account, err := a.accounts.Get(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, account)
	case http.MethodPatch:
		a.updateUser(w, r, id)
	case http.MethodDelete:
		a.deleteUser(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// createUser handles both the admin-gated member creation and the
// superadmin-gated administrator creation. forcedRole, when set,
// overrides whatever role the request carries.
func (a *API) createUser(w http.ResponseWriter, r *http.Request, action, forcedRole string) {
	_, r, ok := a.guard(w, r, action, nil)
	if !ok {
		return
	}
	var req auth.CreateAccountInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if forcedRole != "" {
		req.Role = forcedRole
	}
	account, err := a.accounts.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.create", map[string]any{
		"account_id": account.ID,
		"email":      account.Email,
		"role":       string(account.Role),
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/users/%s", account.ID))
	writeJSON(w, http.StatusCreated, account)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	identity, r, ok := a.guard(w, r, "user.update", func(ident auth.Identity) auth.Ownership {
		return auth.SelfMatch(ident.SubjectID, id)
	})
	if !ok {
		return
	}
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := auth.AccountUpdate{
		Email:    req.Email,
		Phone:    req.Phone,
		Name:     req.Name,
		Surname:  req.Surname,
		Password: req.Password,
	}
	if req.Role != nil {
		role, err := auth.ParseRole(*req.Role)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		upd.Role = &role
	}
	account, err := a.accounts.Update(r.Context(), id, upd, identity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.update", map[string]any{
		"account_id": account.ID,
	})
	writeJSON(w, http.StatusOK, account)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	_, r, ok := a.guard(w, r, "user.delete", func(ident auth.Identity) auth.Ownership {
		return auth.SelfMatch(ident.SubjectID, id)
	})
	if !ok {
		return
	}
	if err := a.accounts.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "user.delete", map[string]any{
		"account_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}
