package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/policy"
	"github.com/erazemk/najdeno/internal/service"
)

// NewRouter creates the router with all endpoints registered, wrapped in
// request logging.
func NewRouter(db *sql.DB, svc *service.Service, issuer *auth.Issuer) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, Issuer: issuer}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{Service: svc}
	claimsHandler := &ClaimsHandler{Service: svc}

	authMW := AuthMiddleware(issuer, db)
	requireStaff := Require(policy.CanManageUsers)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: accounts and the found-item catalogue.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/signin", authHandler.Signin)
	mux.HandleFunc("GET /api/founditems", itemsHandler.ListPublic)
	mux.HandleFunc("GET /api/founditems/{id}", itemsHandler.GetPublic)
	mux.HandleFunc("GET /api/founditems/{id}/photo", itemsHandler.GetPhoto)

	// Session.
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))

	// Accounts (staff only).
	mux.Handle("GET /api/users", authMW(requireStaff(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireStaff(http.HandlerFunc(usersHandler.Create))))

	// Found items: the service applies the access policy.
	mux.Handle("POST /api/founditems", authed(itemsHandler.Create))
	mux.Handle("PUT /api/founditems/{id}", authed(itemsHandler.Update))
	mux.Handle("DELETE /api/founditems/{id}", authed(itemsHandler.Delete))
	mux.Handle("PUT /api/founditems/{id}/photo", authed(itemsHandler.UploadPhoto))
	mux.Handle("GET /api/staff/founditems", authed(itemsHandler.ListStaff))
	mux.Handle("GET /api/staff/founditems/{id}", authed(itemsHandler.GetStaff))

	// Claims.
	mux.Handle("POST /api/claims", authed(claimsHandler.Create))
	mux.Handle("GET /api/claims", authed(claimsHandler.List))
	mux.Handle("GET /api/claims/{id}", authed(claimsHandler.Get))
	mux.Handle("PUT /api/claims/{id}", authed(claimsHandler.Update))
	mux.Handle("DELETE /api/claims/{id}", authed(claimsHandler.Delete))
	mux.Handle("PUT /api/claims/{id}/review", authed(claimsHandler.Review))
	mux.Handle("PUT /api/claims/{id}/pickup", authed(claimsHandler.Pickup))

	// Operations.
	mux.HandleFunc("GET /healthz", healthz(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	return LoggingMiddleware(mux)
}

func healthz(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := svc.Ping(ctx); err != nil {
			writeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
