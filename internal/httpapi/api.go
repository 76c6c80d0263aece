// Package httpapi is the HTTP surface of the service: routing, the
// authentication/authorization guard, middleware and JSON rendering.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"lavka.org/internal/auth"
	"lavka.org/internal/obs"
	"lavka.org/internal/product"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// actionRoles is the static action -> allow-set table consulted by the
// guard. An action absent from the table carries an empty allow-set and
// is open; routes that need "any authenticated caller" use authenticate
// instead of guard.
var actionRoles = map[string]auth.AllowSet{
	"user.create":    {auth.RoleAdmin, auth.RoleSuperadmin},
	"user.promote":   {auth.RoleSuperadmin},
	"user.update":    {auth.RoleSuperadmin, auth.RoleAdmin, auth.RoleUser},
	"user.delete":    {auth.RoleSuperadmin, auth.RoleAdmin, auth.RoleUser},
	"product.update": {auth.RoleSuperadmin, auth.RoleAdmin, auth.RoleUser},
	"product.delete": {auth.RoleSuperadmin, auth.RoleAdmin, auth.RoleUser},
}

// Options wires the API dependencies.
type Options struct {
	Ready    ReadyProbe
	Version  string
	Sessions *auth.Service
	Accounts *auth.AccountService
	Products *product.Service

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	sessions *auth.Service
	accounts *auth.AccountService
	products *product.Service

	rateBurst     int
	ratePerSecond int
	maxBodyBytes  int64
}

func New(opts Options) *API {
	a := &API{
		mux:           http.NewServeMux(),
		readyProbe:    opts.Ready,
		version:       opts.Version,
		sessions:      opts.Sessions,
		accounts:      opts.Accounts,
		products:      opts.Products,
		rateBurst:     opts.RateBurst,
		ratePerSecond: opts.RatePerSecond,
		maxBodyBytes:  opts.MaxBodyBytes,
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSecond <= 0 {
		a.ratePerSecond = 10
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = 1 << 20
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// sessions and registration
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/profile", a.handleProfile)

	// accounts
	a.mux.HandleFunc("/v1/users", a.handleUsers)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	// products
	a.mux.HandleFunc("/v1/products", a.handleProducts)
	a.mux.HandleFunc("/v1/products/", a.handleProductResource)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}
