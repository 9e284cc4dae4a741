package httpserver

import "github.com/go-chi/chi/v5"

// Router registers its routes on the server's chi.Router, following the
// teacher's chi_server.Router contract so RegisterRouters can take any
// number of independent route groups.
type Router interface {
	Register(router chi.Router)
}
