// Package middleware holds the HTTP middleware chain: request IDs, structured
// request logging, OpenTelemetry instrumentation, rate limiting, CORS, security
// headers and query-string validation.
//
// Recommended order on the router:
//
//	RequestID, RealIP, StructuredLogger, OTelMiddleware.Handler,
//	ErrorHandler.RecoveryMiddleware, SecurityHeaders, CORS, RateLimiter.Handler
package middleware
