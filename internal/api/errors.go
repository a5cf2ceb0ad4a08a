package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// MsgUnexpected is the only message an internal failure ever shows.
const MsgUnexpected = "An unexpected error occurred"

// MapKindToStatus returns the HTTP status and short title for kind.
func MapKindToStatus(kind domain.Kind) (int, string) {
	switch kind {
	case domain.KindMissingToken:
		return http.StatusUnauthorized, "Missing Token"
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, "Unauthorized"
	case domain.KindForbidden:
		return http.StatusForbidden, "Access Denied"
	case domain.KindBadRequest:
		return http.StatusBadRequest, "Bad Request"
	case domain.KindConflict:
		return http.StatusConflict, "Conflict"
	case domain.KindNotFound:
		return http.StatusNotFound, "Not Found"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// HandleAPIError writes the response for err. A *domain.Error is rendered
// with its own message, or as a field map when it carries field errors.
// Anything else is a 500 whose details only reach the log.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindInternal {
		status, title := MapKindToStatus(domain.KindInternal)
		shared.RespondWithErrorAndLog(w, r, status, title, MsgUnexpected, err)
		return
	}

	if de.Kind == domain.KindBadRequest && len(de.Fields) > 0 {
		shared.RespondWithFieldErrors(w, r, de.Fields)
		return
	}

	status, title := MapKindToStatus(de.Kind)
	var opts []shared.ResponseOption
	if de.Kind == domain.KindConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, title, de.Message, err, opts...)
}
