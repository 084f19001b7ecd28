// Package tracing wires OpenTelemetry spans into the HTTP layer and the
// analysis pipeline. Exporters are configured by the process; without one the
// global no-op provider makes every call free.
package tracing
