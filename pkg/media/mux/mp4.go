package mux

import (
	"fmt"
	"io"
	"time"

	mp4 "github.com/yapingcat/gomedia/go-mp4"

	"github.com/akemper/kineto/pkg/media"
)

// Compile-time interface assertions.
var (
	_ Muxer   = (*MP4Muxer)(nil)
	_ Demuxer = (*MP4Demuxer)(nil)
)

// MP4Muxer writes H.264 video and Opus audio into an MP4 container.
// Timestamps are written with millisecond precision (the gomedia track
// timescale).
type MP4Muxer struct {
	mux        *mp4.Movmuxer
	videoTrack uint32
	audioTrack uint32
	hasVideo   bool
	hasAudio   bool
}

// NewMP4Muxer creates an MP4 muxer writing to w. The destination must be
// seekable — the moov box is patched after [MP4Muxer.Finalize].
func NewMP4Muxer(w io.WriteSeeker) (*MP4Muxer, error) {
	m, err := mp4.CreateMp4Muxer(w)
	if err != nil {
		return nil, fmt.Errorf("mux: create mp4 muxer: %w", err)
	}
	return &MP4Muxer{mux: m}, nil
}

// AddVideoTrack declares the H.264 track with its pixel dimensions.
func (m *MP4Muxer) AddVideoTrack(width, height int) error {
	if m.hasVideo {
		return fmt.Errorf("mux: video track already added")
	}
	m.videoTrack = m.mux.AddVideoTrack(mp4.MP4_CODEC_H264,
		mp4.WithVideoWidth(uint32(width)),
		mp4.WithVideoHeight(uint32(height)),
	)
	m.hasVideo = true
	return nil
}

// AddAudioTrack declares the Opus track with its PCM source format.
func (m *MP4Muxer) AddAudioTrack(format media.Format) error {
	if m.hasAudio {
		return fmt.Errorf("mux: audio track already added")
	}
	m.audioTrack = m.mux.AddAudioTrack(mp4.MP4_CODEC_OPUS,
		mp4.WithAudioSampleRate(uint32(format.SampleRate)),
		mp4.WithAudioChannelCount(uint8(format.Channels)),
		mp4.WithAudioSampleBits(16),
	)
	m.hasAudio = true
	return nil
}

// WriteVideo appends one encoded access unit to the video track.
func (m *MP4Muxer) WriteVideo(data []byte, pts, dts time.Duration, keyframe bool) error {
	_ = keyframe // gomedia derives sync samples from the H.264 bitstream
	if !m.hasVideo {
		return fmt.Errorf("mux: write video before AddVideoTrack")
	}
	if err := m.mux.Write(m.videoTrack, data, toMillis(pts), toMillis(dts)); err != nil {
		return fmt.Errorf("mux: write video packet: %w", err)
	}
	return nil
}

// WriteAudio appends one encoded Opus frame to the audio track.
func (m *MP4Muxer) WriteAudio(data []byte, pts time.Duration) error {
	if !m.hasAudio {
		return fmt.Errorf("mux: write audio before AddAudioTrack")
	}
	if err := m.mux.Write(m.audioTrack, data, toMillis(pts), toMillis(pts)); err != nil {
		return fmt.Errorf("mux: write audio packet: %w", err)
	}
	return nil
}

// Finalize writes the container trailer. The muxer must not be used
// afterwards.
func (m *MP4Muxer) Finalize() error {
	if err := m.mux.WriteTrailer(); err != nil {
		return fmt.Errorf("mux: write trailer: %w", err)
	}
	return nil
}

// MP4Demuxer reads packets back out of an MP4 recording produced by
// [MP4Muxer] (or any MP4 with an H.264 and/or Opus track).
type MP4Demuxer struct {
	dem         *mp4.MovDemuxer
	videoID     uint32
	audioID     uint32
	hasVideo    bool
	hasAudio    bool
	width       int
	height      int
	audioFormat media.Format
}

// OpenMP4 reads the container head from r and returns a demuxer positioned
// at the first packet.
func OpenMP4(r io.ReadSeeker) (*MP4Demuxer, error) {
	dem := mp4.CreateMp4Demuxer(r)
	tracks, err := dem.ReadHead()
	if err != nil {
		return nil, fmt.Errorf("mux: read mp4 head: %w", err)
	}

	d := &MP4Demuxer{dem: dem}
	for _, tr := range tracks {
		switch tr.Cid {
		case mp4.MP4_CODEC_H264:
			d.videoID = uint32(tr.TrackId)
			d.hasVideo = true
			d.width = int(tr.Width)
			d.height = int(tr.Height)
		case mp4.MP4_CODEC_OPUS:
			d.audioID = uint32(tr.TrackId)
			d.hasAudio = true
			d.audioFormat = media.Format{
				SampleRate: int(tr.SampleRate),
				Channels:   int(tr.ChannelCount),
			}
		}
	}
	if !d.hasVideo && !d.hasAudio {
		return nil, fmt.Errorf("mux: no supported tracks in container")
	}
	return d, nil
}

// HasVideo reports whether the container carries an H.264 track.
func (d *MP4Demuxer) HasVideo() bool { return d.hasVideo }

// HasAudio reports whether the container carries an Opus track.
func (d *MP4Demuxer) HasAudio() bool { return d.hasAudio }

// VideoSize returns the H.264 track's pixel dimensions.
func (d *MP4Demuxer) VideoSize() (width, height int) { return d.width, d.height }

// AudioFormat returns the PCM format of the Opus track.
func (d *MP4Demuxer) AudioFormat() media.Format { return d.audioFormat }

// ReadPacket returns the next packet in decode order, or [io.EOF] after the
// last one. Packets from tracks with unsupported codecs are skipped.
func (d *MP4Demuxer) ReadPacket() (Packet, error) {
	for {
		pkt, err := d.dem.ReadPacket()
		if err != nil {
			if err == io.EOF {
				return Packet{}, io.EOF
			}
			return Packet{}, fmt.Errorf("mux: read mp4 packet: %w", err)
		}

		switch {
		case d.hasVideo && uint32(pkt.TrackId) == d.videoID:
			return Packet{
				Kind: media.KindVideo,
				Data: pkt.Data,
				PTS:  fromMillis(pkt.Pts),
				DTS:  fromMillis(pkt.Dts),
			}, nil
		case d.hasAudio && uint32(pkt.TrackId) == d.audioID:
			return Packet{
				Kind: media.KindAudio,
				Data: pkt.Data,
				PTS:  fromMillis(pkt.Pts),
				DTS:  fromMillis(pkt.Dts),
			}, nil
		}
	}
}

// toMillis converts a duration to the millisecond timescale gomedia expects.
func toMillis(d time.Duration) uint64 {
	if d < 0 {
		return 0
	}
	return uint64(d / time.Millisecond)
}

// fromMillis converts a millisecond container timestamp back to a duration.
func fromMillis(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
