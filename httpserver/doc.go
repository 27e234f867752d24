/*
Package httpserver hosts the CCIP-Read gateway.

The server mounts the gateway handler on the root path and adds the
operational endpoints around it. Every route is logged through the
flashbots httplogger middleware. When a rate is configured, gateway
requests are limited per client IP.

# Endpoints

  - POST / - Resolve a CCIP-Read request
  - OPTIONS / - CORS preflight
  - GET /livez - Liveness check
  - GET /readyz - Readiness check, failing while draining or while the chain is unreachable
  - GET /drain - Mark server as not ready
  - GET /undrain - Mark server as ready
  - /debug/pprof/* - Profiling, when enabled

Prometheus metrics are served by a separate listener on the configured
metrics address.

# Usage

	handler := gateway.NewHandler(resolver, signer, logger)
	srv, err := httpserver.New(&api.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:4000",
		MetricsAddr:              "127.0.0.1:9090",
		Log:                      logger,
		GracefulShutdownDuration: 30 * time.Second,
	}, handler)
	if err != nil {
		return err
	}
	srv.RunInBackground()
	defer srv.Shutdown()
*/
package httpserver
