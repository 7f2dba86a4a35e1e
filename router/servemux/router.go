package servemux

import (
	"net/http"

	"github.com/folio-sh/folio/router"
)

// Router implements router.Router using the net/http ServeMux.
// Patterns are passed through unchanged since the interface already
// uses the Go 1.22 ServeMux syntax.
type Router struct {
	*http.ServeMux
}

func New() router.Router {
	return &Router{ServeMux: http.NewServeMux()}
}

func (s *Router) Handle(pattern string, handler http.Handler) {
	s.ServeMux.Handle(pattern, handler)
}

func (s *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.ServeMux.HandleFunc(pattern, handler)
}

func (s *Router) Param(req *http.Request, key string) string {
	return req.PathValue(key)
}
