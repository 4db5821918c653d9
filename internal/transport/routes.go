package transport

import "net/http"

// Middlewares are the route guards handlers attach to their groups
type Middlewares struct {
	// Auth requires a valid bearer token
	Auth func(http.Handler) http.Handler
	// Admin requires the ADMIN role. It runs after Auth.
	Admin func(http.Handler) http.Handler
	// RateLimit throttles the unauthenticated auth endpoints
	RateLimit func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

func (m Middlewares) withDefaults() Middlewares {
	if m.Auth == nil {
		m.Auth = passthrough
	}
	if m.Admin == nil {
		m.Admin = passthrough
	}
	if m.RateLimit == nil {
		m.RateLimit = passthrough
	}
	return m
}
