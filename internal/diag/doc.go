// Package diag defines the diagnostic model shared by the driver, the
// module front end, and the glue compiler.
//
// Diagnostic is the central record: severity, a stable numeric code, a short
// message, a primary source.Span, and optional notes with secondary spans.
// Producers emit through a Reporter so that storage and formatting stay
// decoupled; BagReporter aggregates into a Bag, which supports sorting and
// limits. Rendering lives in render.go and is the only place that does IO.
package diag
