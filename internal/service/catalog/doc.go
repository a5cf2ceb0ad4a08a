// Package catalog implements the book catalog: payload validation and
// CRUD operations over a store.BookStore.
//
// Every failure returned by this package is a *domain.Error, or wraps a
// store error that the API layer treats as internal.
package catalog
