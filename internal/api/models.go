package api

import "github.com/phrazzld/bookshelf-api/internal/domain"

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	// Token is the bearer token for subsequent requests
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when Token expires
	ExpiresAt string `json:"expires_at"`
}

// BookResponse is a book as returned by the list endpoint.
type BookResponse struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Author        string      `json:"author"`
	PublishedDate domain.Date `json:"publishedDate"`
	ISBN          string      `json:"isbn"`
}

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func bookToResponse(b domain.Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		PublishedDate: b.PublishedDate,
		ISBN:          b.ISBN,
	}
}
