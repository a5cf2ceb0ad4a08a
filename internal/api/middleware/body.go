package middleware

import (
	"bufio"
	"fmt"
	"io"
	"net/http"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
)

// BodylessMethods are the methods BodyGuard rejects bodies for by default.
var BodylessMethods = []string{http.MethodGet, http.MethodDelete}

// BodyGuard rejects requests whose method must not carry a body but do.
// A body is present when Content-Length is positive, or when the length is
// unknown and at least one byte can be read.
func BodyGuard(methods ...string) func(http.Handler) http.Handler {
	if len(methods) == 0 {
		methods = BodylessMethods
	}
	guarded := make(map[string]bool, len(methods))
	for _, m := range methods {
		guarded[m] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guarded[r.Method] && hasBody(r) {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Bad Request",
					fmt.Sprintf("Body is not allowed for %s requests.", r.Method))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasBody(r *http.Request) bool {
	if r.ContentLength > 0 {
		return true
	}
	if r.ContentLength == 0 || r.Body == nil || r.Body == http.NoBody {
		return false
	}

	// Unknown length, e.g. chunked encoding: peek without losing the byte.
	br := bufio.NewReaderSize(r.Body, 16)
	_, err := br.Peek(1)
	r.Body = struct {
		io.Reader
		io.Closer
	}{br, r.Body}
	return err == nil
}
