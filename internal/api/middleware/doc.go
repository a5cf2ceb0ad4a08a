// Package middleware contains the HTTP middleware that runs in front of
// the API handlers: trace ids, the body guard, token authentication, role
// checks and login rate limiting.
package middleware
