// Package api handles incoming HTTP requests, request decoding and
// response formatting. It adapts HTTP to the catalog and authentication
// services and is the single place where domain errors become status codes.
package api
