package interfaces

import (
	"fmt"
	"net/http"
	"strings"
)

const maxItemIDLength = 64

func capitalizeFirstLetter(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(string(s[0])) + s[1:]
}

// ValidateCartPathParamsMiddleware rejects blank or oversized path parameters
// before the session's checkout is loaded.
func (h *CartHandler) ValidateCartPathParamsMiddleware(next http.Handler, params ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, param := range params {
			paramValue := strings.TrimSpace(r.PathValue(param))
			if paramValue == "" {
				h.respondError(w, http.StatusBadRequest, capitalizeFirstLetter(fmt.Sprintf("%s is required", param)))
				return
			}
			if len(paramValue) > maxItemIDLength {
				h.respondError(w, http.StatusNotFound, "Item not found in cart")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
