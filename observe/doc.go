// Package observe provides observability primitives for remote session calls.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the session and
// token layers; credential material is redacted before it reaches any sink.
package observe
