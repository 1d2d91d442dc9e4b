package router

import (
	"net/http"
)

// New returns a new *http.ServeMux that serves apiHandle behind the
// configured middleware chain.
func New(apiHandle http.Handler, opts ...Option) *http.ServeMux {
	if apiHandle == nil {
		panic("router: handler cannot be nil")
	}

	settings := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	finalHandler := applyMiddlewares(apiHandle, settings.middlewareChain())
	mux := http.NewServeMux()
	mux.Handle("/", finalHandler)
	return mux
}

func applyMiddlewares(handler http.Handler, middlewares []Middleware) http.Handler {
	if len(middlewares) == 0 {
		return handler
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		middleware := middlewares[i]
		if middleware == nil {
			continue
		}
		handler = middleware(handler)
	}

	return handler
}
