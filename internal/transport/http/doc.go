// Package http implements the HTTP handlers of the fund comparison service.
// Handlers stay thin: they bind and validate the query string, call a service
// and render JSON, delegating failures to internal/errors for RFC 7807
// responses.
//
// Routes, relative to the API base path /api/v1:
//
//	GET /fund-types   distinct fund types
//	GET /controls     owner and period options for a fund type
//	GET /date-range   resolved comparison window and its label
//	GET /tables       the five comparison tables
//
// Health, version and metrics endpoints are mounted at the root.
package http
