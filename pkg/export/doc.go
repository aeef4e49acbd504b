// Package export orchestrates the offline path from a finished recording
// plus user edit state to one shareable output file.
//
// The pipeline itself contains no media processing: it resolves the audio
// source (original or noise-gated), asks the timeline builder for a
// composition [timeline.Plan], and hands the plan to a [Renderer] backend.
// Two output modes exist from the same plan — a lightweight preview
// (no caption burn-in) and a final export written to the configured
// recordings directory.
//
// The shipped [CutRenderer] performs container-level segment copy with
// optional audio replacement. Backends that decode frames — applying
// geometric transforms and driving the bubble compositor — implement
// [Renderer] on top of platform codecs and pkg/compose.
//
// Every failure mode maps to exactly one user-presentable message via
// [UserMessage]; raw backend errors never cross this boundary unwrapped.
package export
