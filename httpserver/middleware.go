package httpserver

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware. The first one is outermost: it runs first on
// the request and last on the response.
//
//	handler := httpserver.Chain(
//	    httpserver.Recovery(logger),
//	    httpserver.RequestID(),
//	)(mux)
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
