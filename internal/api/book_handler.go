package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
)

// Success messages for catalog writes.
const (
	MsgBookAdded   = "Book added successfully."
	MsgBookUpdated = "Book updated successfully."
	MsgBookDeleted = "Book deleted successfully."
)

// BookCatalog is the catalog service as seen by the HTTP layer.
type BookCatalog interface {
	List(ctx context.Context) ([]domain.Book, error)
	Create(ctx context.Context, payload []byte) (int64, error)
	Update(ctx context.Context, id int64, payload []byte) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// BookHandler handles book-related API requests.
type BookHandler struct {
	catalog BookCatalog
	logger  *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(catalog BookCatalog, logger *slog.Logger) *BookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "book_handler")),
	}
}

// ListBooks handles GET /api/books.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, bookToResponse(b))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateBook handles POST /api/books.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	id, err := h.catalog.Create(r.Context(), body)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("create request served", slog.Int64("book_id", id))
	shared.RespondWithJSON(w, r, http.StatusCreated, MessageResponse{Message: MsgBookAdded, ID: id})
}

// UpdateBook handles PUT /api/books/{id}.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	if _, err := h.catalog.Update(r.Context(), id, body); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: MsgBookUpdated, ID: id})
}

// DeleteBook handles DELETE /api/books/{id}.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if _, err := h.catalog.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: MsgBookDeleted, ID: id})
}
