// Package httpserver provides the small HTTP server behind `connpass watch`:
// graceful shutdown, request IDs, panic recovery, request logging, health
// probes and a Prometheus scrape endpoint.
//
// # Quick Start
//
//	health := httpserver.NewHealthHandler("connpass-exporter", version)
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", httpserver.PrometheusHandlerFor(registry))
//	mux.Handle("/livez", health.LiveHandler())
//	mux.Handle("/readyz", health.ReadyHandler())
//
//	server := httpserver.New(
//	    httpserver.WithAddr(":9464"),
//	    httpserver.WithLogger(logger),
//	    httpserver.WithLogging(httpserver.LoggerConfig{
//	        Logger:    logger,
//	        SkipPaths: []string{"/metrics", "/livez", "/readyz"},
//	    }),
//	    httpserver.WithHandler(mux),
//	)
//
//	if err := server.ListenAndServe(ctx); err != nil {
//	    return err
//	}
//
// # Middleware
//
// Every server runs RequestID, then request logging when configured, then
// Recovery, then anything passed to WithMiddleware.
package httpserver
