package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                         "/",
		"/metrics":                 "/metrics",
		"/v1/users/abc":            "/v1/users/:id",
		"/v1/products/01HZX":       "/v1/products/:id",
		"/v1/products/abc/extra":   "/v1/products/abc/extra",
		"/v1/products":             "/v1/products",
		"/v1/products?limit=10":    "/v1/products",
		"/v1/users/abc?fields=all": "/v1/users/:id",
		"/v1/auth/login":           "/v1/auth/login",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
