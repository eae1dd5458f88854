// Package health serves liveness and readiness probes for the long-running
// schedule command.
//
// Readiness is the conjunction of named checks registered by the caller,
// typically whether a policy set is loaded and whether the most recent
// audit run completed:
//
//	checker := health.New(5 * time.Second)
//	checker.Register("policies", func(ctx context.Context) error { ... })
//	health.Register(mux, checker, health.VersionInfo{Version: version})
//
// Endpoints:
//
//	GET /healthz   200 while the process runs
//	GET /readyz    200 when every check passes, 503 otherwise
//	GET /version   build information
package health
