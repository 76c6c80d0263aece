package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"lavka.org/internal/audit"
	"lavka.org/internal/auth"
	"lavka.org/internal/product"
)

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		_, r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		products, err := a.products.List(r.Context())
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		identity, r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		var req product.CreateInput
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		p, err := a.products.Create(r.Context(), identity.SubjectID, req)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "product.create", map[string]any{
			"product_id": p.ID,
			"owner_id":   p.OwnerID,
		})
		w.Header().Set("Location", fmt.Sprintf("/v1/products/%s", p.ID))
		writeJSON(w, http.StatusCreated, p)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProductResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/products/")
	id = strings.Trim(id, "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		_, r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		p, err := a.products.Get(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPatch:
		a.updateProduct(w, r, id)
	case http.MethodDelete:
		a.deleteProduct(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request, id string) {
	_, r, ok := a.guard(w, r, "product.update", func(ident auth.Identity) auth.Ownership {
		return a.products.OwnedBy(ident.SubjectID, id)
	})
	if !ok {
		return
	}
	var req product.UpdateInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.products.Update(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "product.update", map[string]any{
		"product_id": p.ID,
	})
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	_, r, ok := a.guard(w, r, "product.delete", func(ident auth.Identity) auth.Ownership {
		return a.products.OwnedBy(ident.SubjectID, id)
	})
	if !ok {
		return
	}
	if err := a.products.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "product.delete", map[string]any{
		"product_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}
