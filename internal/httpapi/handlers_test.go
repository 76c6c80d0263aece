package httpapi

import (
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rr := doJSON(t, env.api, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "ok" {
		t.Fatalf("unexpected status: %v", body["status"])
	}
	if body["version"] != "test" {
		t.Fatalf("unexpected version: %v", body["version"])
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	env := newTestEnv(t)

	rr := doJSON(t, env.api, http.MethodGet, "/readyz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestInfo(t *testing.T) {
	env := newTestEnv(t)

	rr := doJSON(t, env.api, http.MethodGet, "/v1/info", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["name"] != "lavka-api" {
		t.Fatalf("unexpected name: %v", body["name"])
	}
}

func TestUnknownPath(t *testing.T) {
	env := newTestEnv(t)

	rr := doJSON(t, env.api, http.MethodGet, "/nope", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestMethodNotAllowedCarriesAllowHeader(t *testing.T) {
	env := newTestEnv(t)

	rr := doJSON(t, env.api, http.MethodPut, "/v1/auth/login", "", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if rr.Header().Get("Allow") == "" {
		t.Fatal("expected Allow header")
	}
}
