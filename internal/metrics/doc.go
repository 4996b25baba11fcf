// Package metrics defines the Prometheus metrics exported by the catalog
// core. All metrics are registered at package load via promauto.
package metrics
