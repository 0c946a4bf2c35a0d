// Package middleware holds ambient chi middleware wired around the admin
// router; it never runs on the proxied/policy-chain path.
package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// NewAdminCORS returns CORS handling for the /_admin router.
func NewAdminCORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

