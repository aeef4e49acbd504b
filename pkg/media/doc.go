// Package media defines the sample model and stream interfaces shared by the
// capture and export subsystems of kineto.
//
// The central type is [Sample] — one decoded-or-encoded media unit (a video
// frame or an audio chunk) stamped with a presentation time. Samples are
// produced by platform capture adapters, pushed through [Stream] channels,
// and consumed exactly once by a capture writer.
//
// The two primary abstractions are:
//
//   - [Source] — opens a camera or screen device and returns a [Stream].
//   - [Stream] — an active capture session delivering video and audio
//     samples on separate channels until closed.
//
// Implementations of these interfaces are provided by platform-specific
// adapter packages (macOS ScreenCaptureKit, V4L2, X11 grab, …). The
// interfaces are intentionally narrow to keep the writer decoupled from
// device details.
//
// This package lives under pkg/ because external code (platform capture
// adapters, render backends) is expected to implement [Source] and [Stream].
package media
