package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/service/catalog"
)

// getPathID extracts a positive int64 from the URL path parameter paramName.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(domain.KindBadRequest, catalog.MsgInvalidID, domain.ErrInvalidID)
	}
	return id, nil
}

// readBody reads the request body, writing an error response on failure.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := shared.ReadBody(w, r)
	if err == nil {
		return body, true
	}
	if errors.Is(err, shared.ErrBodyTooLarge) {
		shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
			"Request body is too large")
		return nil, false
	}
	HandleAPIError(w, r, domain.NewError(domain.KindBadRequest, catalog.MsgInvalidFormat, err))
	return nil, false
}
