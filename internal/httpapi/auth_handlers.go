package httpapi

import (
	"net/http"

	"lavka.org/internal/audit"
	"lavka.org/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req auth.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	account, err := a.sessions.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"account_id": account.ID,
		"email":      account.Email,
		"role":       string(account.Role),
	})
	writeJSON(w, http.StatusCreated, account)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	session, err := a.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"account_id": session.Identity.SubjectID,
		"role":       string(session.Identity.Role),
	})
	writeJSON(w, http.StatusOK, session)
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, r, ok := a.authenticate(w, r)
	if !ok {
		return
	}
	account, err := a.accounts.Get(r.Context(), identity.SubjectID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
