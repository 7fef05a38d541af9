package http

import (
	"net/http"

	"invoice-backend/internal/config"
	"invoice-backend/internal/handlers"
	"invoice-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router dispatches to
type Handlers struct {
	Invoice *handlers.InvoiceHandler
	Auth    *handlers.AuthHandler
	Account *handlers.AccountHandler
	Events  *handlers.EventsHandler
	Health  *handlers.HealthHandler
}

// paths names the resources of one route family. The dashboard uses the
// /api family; the root family is the public API.
type paths struct {
	invoices string
	account  string
}

var routeFamilies = []struct {
	prefix string
	paths  paths
}{
	{"", paths{invoices: "/invoices", account: "/me"}},
	{"/api", paths{invoices: "/invoice", account: "/user"}},
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	for _, family := range routeFamilies {
		base := r
		if family.prefix != "" {
			base = r.PathPrefix(family.prefix).Subrouter()
		}
		registerAPI(base, family.paths, h, authMiddleware)
	}

	if h.Events != nil {
		r.Handle("/ws", authMiddleware.RequireSession(http.HandlerFunc(h.Events.Stream))).Methods("GET")
	}

	// Health check endpoints (no auth required)
	if h.Health != nil {
		r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
		r.HandleFunc("/health/ready", h.Health.ReadinessHealth).Methods("GET")
		r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	}

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func registerAPI(r *mux.Router, p paths, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	required := func(f http.HandlerFunc) http.Handler { return authMiddleware.RequireSession(f) }

	// Public routes
	r.HandleFunc("/sign-up", h.Auth.SignUp).Methods("POST")
	r.HandleFunc("/sign-in", h.Auth.SignIn).Methods("POST")
	r.Handle(p.account, authMiddleware.OptionalSession(http.HandlerFunc(h.Account.Me))).Methods("GET")

	// Session routes
	r.Handle("/sign-out", required(h.Auth.SignOut)).Methods("GET")
	r.Handle(p.account, required(h.Account.UpdateProfile)).Methods("PATCH")
	r.Handle(p.account+"/logo", required(h.Account.UploadLogo)).Methods("POST")

	r.Handle(p.invoices, required(h.Invoice.CreateInvoice)).Methods("POST")
	r.Handle(p.invoices, required(h.Invoice.ListInvoices)).Methods("GET")
	r.Handle(p.invoices+"/next-number", required(h.Invoice.NextInvoiceNumber)).Methods("GET")
	r.Handle(p.invoices+"/{id}", required(h.Invoice.GetInvoice)).Methods("GET")
	r.Handle(p.invoices+"/{id}", required(h.Invoice.UpdateInvoice)).Methods("PATCH")
	r.Handle(p.invoices+"/{id}", required(h.Invoice.DeleteInvoice)).Methods("DELETE")
	r.Handle(p.invoices+"/{id}/pdf", required(h.Invoice.DownloadPDF)).Methods("GET")
	r.Handle(p.invoices+"/{id}/preview", required(h.Invoice.Preview)).Methods("GET")
}

// Wrap applies the outer middleware chain: panic recovery, then CORS
func Wrap(cfg *config.Config, router http.Handler) http.Handler {
	return middleware.PanicRecovery(middleware.NewCORS(cfg)(router))
}
