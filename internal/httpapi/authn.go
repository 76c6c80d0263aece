package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"lavka.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

// authenticate requires a valid bearer token and returns the verified
// identity plus the request with identity attached to its context. Used
// by routes that accept any active account.
func (a *API) authenticate(w http.ResponseWriter, r *http.Request) (auth.Identity, *http.Request, bool) {
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return auth.Identity{}, r, false
	}
	identity, err := a.sessions.Authenticate(r.Context(), token)
	if err != nil {
		handleServiceError(w, r, err)
		return auth.Identity{}, r, false
	}
	ctx := auth.ContextWithIdentity(r.Context(), identity)
	ctx = auth.ContextWithToken(ctx, token)
	return identity, r.WithContext(ctx), true
}

// guard runs the access decision for a named action. A missing token
// leaves the identity nil so open actions still pass; a present but
// invalid token is refused outright. ownsFor, when non-nil, builds the
// ownership predicate for the verified caller.
func (a *API) guard(w http.ResponseWriter, r *http.Request, action string, ownsFor func(auth.Identity) auth.Ownership) (auth.Identity, *http.Request, bool) {
	required := actionRoles[action]

	var identity *auth.Identity
	if header := r.Header.Get(authHeader); strings.TrimSpace(header) != "" {
		token, err := extractBearerToken(header)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return auth.Identity{}, r, false
		}
		verified, err := a.sessions.Authenticate(r.Context(), token)
		if err != nil {
			handleServiceError(w, r, err)
			return auth.Identity{}, r, false
		}
		identity = &verified
		ctx := auth.ContextWithIdentity(r.Context(), verified)
		ctx = auth.ContextWithToken(ctx, token)
		r = r.WithContext(ctx)
	}

	var owns auth.Ownership
	if identity != nil && ownsFor != nil {
		owns = ownsFor(*identity)
	}
	if err := auth.Authorize(r.Context(), identity, required, owns); err != nil {
		handleServiceError(w, r, err)
		return auth.Identity{}, r, false
	}
	if identity == nil {
		return auth.Identity{}, r, true
	}
	return *identity, r, true
}
