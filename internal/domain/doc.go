// Package domain contains the core entities of the book catalog (books,
// users, roles) and the tagged Error type every layer returns. It has no
// dependencies on storage or transport.
package domain
