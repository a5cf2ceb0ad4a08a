// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. It also owns schema migrations
// (embedded goose files under migrations/) and bootstrap seeding.
package postgres
