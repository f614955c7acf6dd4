// Package metric provides Prometheus-based metrics collection and an HTTP
// server for movekit client observability.
//
// The package offers a centralized metrics registry managing both core
// client metrics (API requests, flow runs, entity store sizes) and custom
// component-specific metrics. It includes an HTTP server exposing metrics
// in Prometheus format.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: client-level metrics automatically registered (Metrics type)
//  2. Component Registry: extensible registration for component metrics (MetricsRegistrar interface)
//  3. HTTP Server: metrics endpoint with a health check (Server type)
//
// Core metrics cover the three subsystems the orchestration layer touches:
// the data-provider adapter (request counts and latency per resource and
// operation), the flow runtime (runs, durations, failures per flow), and
// the normalized entity store (per-type record counts and merge counts).
package metric
