// Package metrics sets up the OpenTelemetry meter provider and the HTTP
// request instruments.
//
// The exporter is chosen by name: "prometheus" serves the Prometheus text
// format from Provider.Handler, "stdout" periodically writes JSON to
// stdout, and "none" discards everything.
package metrics
