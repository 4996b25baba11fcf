// Package server exposes the catalog, crawler, and storage analyzer
// over HTTP.
//
// All API routes live under /api and return JSON. Crawls triggered via
// POST /api/crawl run in the background; GET /api/crawl/progress
// reports their state. Liveness and readiness probes are served at
// /healthz and /readyz, and Prometheus metrics at /metrics when
// enabled.
package server
