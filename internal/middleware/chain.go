package middleware

import "net/http"

// Chain applies multiple middleware in order (first to last)
// The middleware are executed in the order they are provided
//
// Example:
//
//	handler := Chain(mux,
//	    Recovery,        // Executes first
//	    RequestLogging,  // Executes second
//	    CORS(origin),    // Executes third
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	// Apply middleware in reverse order so they execute in the order provided
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Use wraps a single handler func, for per-route middleware
func Use(h http.HandlerFunc, middlewares ...func(http.Handler) http.Handler) http.Handler {
	return Chain(h, middlewares...)
}
