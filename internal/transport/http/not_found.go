package http

import "net/http"

// NotFoundHandler answers unknown routes with a JSON 404 naming the path.
// The browser app navigates by fragment, so any server path outside the
// API is a client bug worth surfacing.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})
}
