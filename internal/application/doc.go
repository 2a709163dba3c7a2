// Package application provides application initialization and dependency wiring.
// It builds the solver, trace storage, schema validator, metrics registry,
// handlers, routers, and HTTP server, leaving the main package to CLI parsing
// and orchestration.
package application
