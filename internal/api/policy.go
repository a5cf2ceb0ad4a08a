package api

import (
	"github.com/phrazzld/bookshelf-api/internal/api/middleware"
	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// Guarded operations.
const (
	OpListBooks  middleware.Operation = "books:list"
	OpCreateBook middleware.Operation = "books:create"
	OpUpdateBook middleware.Operation = "books:update"
	OpDeleteBook middleware.Operation = "books:delete"
)

// Policy is the role set required for each operation.
var Policy = middleware.Policy{
	OpListBooks:  {domain.RoleUser, domain.RoleAdmin},
	OpCreateBook: {domain.RoleAdmin},
	OpUpdateBook: {domain.RoleAdmin},
	OpDeleteBook: {domain.RoleAdmin},
}
