// Package metrics centralizes the Prometheus metrics of the service:
// HTTP traffic, deep analysis outcomes, agent invocations, outbound calls to
// external collaborators and cache effectiveness.
//
// All metrics are registered with the default registry and exposed via the
// /metrics endpoint.
package metrics
