package router

import "net/http"

// Router abstracts the HTTP mux so the app can run on either
// julienschmidt/httprouter or the net/http ServeMux.
//
// Patterns follow the Go 1.22 ServeMux form "METHOD /path/{param}".
// Implementations translate the pattern to their native syntax.
type Router interface {
	http.Handler

	// Handle registers a handler for the given "METHOD /path" pattern.
	Handle(pattern string, handler http.Handler)
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))

	// Param returns the value of a named path parameter for a request
	// dispatched by this router, or "" if absent.
	Param(req *http.Request, key string) string
}
