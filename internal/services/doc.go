// Package services holds the application's business operations behind the HTTP
// transport.
//
// # Available Services
//
//	- FundService: fund types, dashboard controls, date ranges and comparison tables
//	- HealthService: health, readiness, liveness and version reporting
//
// FundService is stateless between calls apart from an optional TTL cache of
// rendered tables. Every query runs inside a span and records the fund query
// metrics from the infrastructure package:
//
//	svc := services.NewFundService(data, catalog, logger,
//	    services.WithCache(10*time.Minute, 20*time.Minute),
//	    services.WithTracer(otel.Tracer("fund")),
//	    services.WithMetrics(metrics),
//	)
//	resp, err := svc.Tables(ctx, services.FundQuery{FundType: "1989-1995", Period: "3"})
//
// # Error Handling
//
// Unknown fund types and malformed periods are reported as ErrUnknownFundType and
// domain.ErrInvalidPeriod. Handlers map both to 400 responses. An empty fund
// type or period is not an error: the service answers with empty tables.
package services
