package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

const ownerAPIPrefix = "/api/v1"

var defaultDashboardOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}

// DashboardCORS allows the owner dashboard origins with credentials.
func DashboardCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultDashboardOrigins
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

// PublicCORS serves embeds on arbitrary customer sites: any origin, no
// credentials.
func PublicCORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           600,
	}).Handler
}

// CORS picks the policy by path: the owner API under /api/v1 gets the
// dashboard policy, everything else is public.
func CORS(dashboardOrigins []string) func(http.Handler) http.Handler {
	dashboard := DashboardCORS(dashboardOrigins)
	public := PublicCORS()
	return func(next http.Handler) http.Handler {
		dashboardNext := dashboard(next)
		publicNext := public(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == ownerAPIPrefix || strings.HasPrefix(r.URL.Path, ownerAPIPrefix+"/") {
				dashboardNext.ServeHTTP(w, r)
				return
			}
			publicNext.ServeHTTP(w, r)
		})
	}
}
