// Package timeline turns user edit state into a renderable export plan.
//
// The editing model is subtractive: the user deletes transcript words, each
// deletion contributes an exclusion [Range], and the builder computes the
// complement — the included ranges that survive into the output — then lays
// them out back-to-back on a zero-based output timeline. Caption timestamps
// are remapped onto that edited timeline, and per-track affine transforms
// are computed for aspect-ratio cropping and side-by-side layouts.
//
// Everything in this package is pure computation over value types; a [Plan]
// is built once per export attempt and handed to a render backend.
package timeline
