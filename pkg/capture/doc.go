// Package capture turns live media sample streams into finalized recording
// files.
//
// A [Writer] accepts video and audio samples pushed from platform capture
// goroutines, reconciles the two streams' clocks, and feeds a [Sink] — the
// encoder/container backend. One Writer exists per active source (camera,
// screen); each finalizes exactly one file.
//
// The hard parts live in the Writer's policies:
//
//   - Lazy start: the sink cannot be configured until the first video
//     frame's dimensions are known, so audio arriving earlier is buffered
//     in order rather than dropped.
//   - Timestamp rebasing: the session zero-time is the earliest timestamp
//     seen across both streams at first-frame time; every written sample is
//     rebased against it so the file starts at t=0 regardless of the
//     platform clock's origin.
//   - Real-time drops: when the sink reports not-ready, the sample is
//     dropped rather than queued — timeliness over completeness.
//
// All writer state is confined to one owner goroutine; Append calls hand
// off through a bounded channel and never block.
package capture
