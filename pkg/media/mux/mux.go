// Package mux provides container muxing and demuxing for kineto recordings.
//
// The [Muxer] and [Demuxer] interfaces define the narrow container surface
// the capture writer and export pipeline depend on. The shipped
// implementation ([MP4Muxer], [MP4Demuxer]) targets the project's fixed
// container/codec pair — MP4 with H.264 video and Opus audio — backed by
// github.com/yapingcat/gomedia. Alternative container backends implement
// the same interfaces.
package mux

import (
	"time"

	"github.com/akemper/kineto/pkg/media"
)

// Packet is one demuxed media unit read back from a container: an encoded
// video access unit or an encoded audio frame, with container timestamps.
type Packet struct {
	// Kind discriminates video from audio.
	Kind media.Kind

	// Data is the codec bitstream payload.
	Data []byte

	// PTS is the presentation timestamp relative to file start.
	PTS time.Duration

	// DTS is the decode timestamp relative to file start.
	DTS time.Duration

	// Keyframe reports whether a video packet is a sync sample.
	Keyframe bool
}

// Muxer writes timestamped media payloads into a container file.
//
// Track setup must complete before the first Write call. Timestamps are
// expected to be zero-based — the capture writer rebases all sample clocks
// before handing payloads to a Muxer.
//
// Implementations are not required to be safe for concurrent use; the
// capture writer serialises all calls on its owner goroutine.
type Muxer interface {
	// AddVideoTrack declares the H.264 video track with its pixel
	// dimensions. Must be called at most once, before any write.
	AddVideoTrack(width, height int) error

	// AddAudioTrack declares the Opus audio track with its PCM source
	// format. Must be called at most once, before any write.
	AddAudioTrack(format media.Format) error

	// WriteVideo appends one encoded video access unit.
	WriteVideo(data []byte, pts, dts time.Duration, keyframe bool) error

	// WriteAudio appends one encoded audio frame.
	WriteAudio(data []byte, pts time.Duration) error

	// Finalize writes the container trailer and flushes all metadata.
	// The Muxer must not be used afterwards.
	Finalize() error
}

// Demuxer reads timestamped packets back out of a container file in decode
// order. ReadPacket returns [io.EOF] after the last packet.
type Demuxer interface {
	// HasVideo reports whether the container carries a video track.
	HasVideo() bool

	// HasAudio reports whether the container carries an audio track.
	HasAudio() bool

	// VideoSize returns the video track's pixel dimensions, or zeros when
	// HasVideo is false.
	VideoSize() (width, height int)

	// AudioFormat returns the PCM format of the decoded audio track.
	// Meaningless when HasAudio is false.
	AudioFormat() media.Format

	// ReadPacket returns the next packet in decode order.
	ReadPacket() (Packet, error)
}
