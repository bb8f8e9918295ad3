// Package metrics records build metrics for yassg.
//
// Components receive a Recorder and default to NoopRecorder, so no call site
// needs a nil check. When a metrics file is requested the CLI swaps in a
// PrometheusRecorder backed by its own registry and exports the registry in
// the node-exporter textfile format once the build is over.
package metrics
