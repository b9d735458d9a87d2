// Package errors renders failures as RFC 7807 problem details.
//
// Handlers return either an *APIError, which carries its HTTP status and a
// stable error code, or an *AppError categorised by ErrorType. ErrorHandler maps
// both onto ProblemDetails, tags the response with the request's trace ID and
// logs 4xx at warn and 5xx at error level.
package errors
