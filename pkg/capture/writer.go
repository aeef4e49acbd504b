package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/akemper/kineto/internal/observe"
	"github.com/akemper/kineto/pkg/media"
)

// defaultQueueSize is the default capacity of the sample handoff channel.
// Sized to absorb roughly one second of 60 fps video plus 20 ms audio
// chunks without blocking capture threads.
const defaultQueueSize = 128

// Option configures a [Writer] during construction.
type Option func(*Writer)

// WithAudioFormat declares the PCM format of the session's audio stream.
// Without it the session is video-only and audio samples are discarded.
func WithAudioFormat(f media.Format) Option {
	return func(w *Writer) {
		w.audioFormat = &f
	}
}

// WithAudioDelay adds a fixed offset to audio timestamps only (never
// video), compensating for systematic encoder-introduced audio lead. This
// is an empirical tunable, not a measured per-recording value.
func WithAudioDelay(d time.Duration) Option {
	return func(w *Writer) {
		w.audioDelay = d
	}
}

// WithQueueSize sets the capacity of the sample handoff channel. Appends
// arriving while the queue is full are dropped and counted.
func WithQueueSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.queueSize = n
		}
	}
}

// Writer merges one video stream and an optional audio stream into a single
// correctly timestamped recording via a [Sink].
//
// All exported methods are safe for concurrent use. Append methods are
// fire-and-forget: delivery problems are internal and surface later through
// the [Writer.StopRecording] result.
type Writer struct {
	sink        Sink
	audioFormat *media.Format
	audioDelay  time.Duration
	queueSize   int

	id      string
	ctrl    chan ctrlReq
	samples chan media.Sample
	done    chan struct{}
	state   atomic.Int32

	mu     sync.Mutex
	result stopResult

	// Loop-owned state. Only the owner goroutine touches these.
	paused   bool
	zero     time.Duration
	audioBuf []media.Sample
	failure  error
}

type ctrlOp int

const (
	opStart ctrlOp = iota
	opPause
	opResume
	opStop
)

type ctrlReq struct {
	op    ctrlOp
	reply chan stopResult // non-nil for opStop
}

type stopResult struct {
	path string
	err  error
}

// NewWriter creates a Writer feeding sink and starts its owner goroutine.
// The writer begins in [StateIdle]; call [Writer.StartRecording] to arm it.
func NewWriter(sink Sink, opts ...Option) *Writer {
	w := &Writer{
		sink:      sink,
		queueSize: defaultQueueSize,
		id:        uuid.NewString(),
		ctrl:      make(chan ctrlReq),
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	w.samples = make(chan media.Sample, w.queueSize)
	go w.loop()
	return w
}

// State returns a snapshot of the session state.
func (w *Writer) State() State {
	return State(w.state.Load())
}

// StartRecording arms the writer: the next video frame starts the sink.
// Calling it outside [StateIdle] has no effect.
func (w *Writer) StartRecording() {
	w.control(opStart)
}

// Pause discards incoming samples without closing the sink. The session
// clock keeps running, so resuming produces a contiguous recording with the
// paused motion skipped — no gap is written.
func (w *Writer) Pause() {
	w.control(opPause)
}

// Resume ends a pause. Samples arriving after Resume are written normally.
func (w *Writer) Resume() {
	w.control(opResume)
}

// AppendVideo hands one video sample to the writer. Never blocks; the
// sample is dropped when the writer is idle, paused, finished, or its
// queue is full.
func (w *Writer) AppendVideo(s media.Sample) {
	s.Kind = media.KindVideo
	w.append(s)
}

// AppendAudio hands one PCM audio sample to the writer. Never blocks.
// Audio arriving before the first video frame is buffered, not dropped.
func (w *Writer) AppendAudio(s media.Sample) {
	s.Kind = media.KindAudio
	w.append(s)
}

// StopRecording ends the session and finalizes the output file.
//
// It is idempotent and always lands in a terminal state: repeated calls
// return the same result. The returned path is empty when the sink never
// started — a normal "nothing was recorded" outcome, not an error. The
// error is non-nil only when the sink failed; ctx bounds only the wait,
// not the finalisation itself.
func (w *Writer) StopRecording(ctx context.Context) (string, error) {
	reply := make(chan stopResult, 1)
	select {
	case w.ctrl <- ctrlReq{op: opStop, reply: reply}:
		select {
		case res := <-reply:
			return res.path, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	case <-w.done:
		w.mu.Lock()
		res := w.result
		w.mu.Unlock()
		return res.path, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// control sends a fire-and-forget control request to the owner goroutine.
func (w *Writer) control(op ctrlOp) {
	select {
	case w.ctrl <- ctrlReq{op: op}:
	case <-w.done:
	}
}

// append hands a sample off to the owner goroutine without blocking.
func (w *Writer) append(s media.Sample) {
	select {
	case w.samples <- s:
	case <-w.done:
	default:
		w.countDrop(s.Kind, "queue_full")
	}
}

// loop is the owner goroutine. It serialises every state mutation: samples
// and control requests are processed strictly in arrival order per channel,
// and cross-stream ordering is reconciled only via timestamps.
func (w *Writer) loop() {
	for {
		select {
		case req := <-w.ctrl:
			if w.handleCtrl(req) {
				return
			}
		case s := <-w.samples:
			w.handleSample(s)
		}
	}
}

// handleCtrl processes one control request. Returns true when the session
// reached a terminal state and the loop must exit.
func (w *Writer) handleCtrl(req ctrlReq) bool {
	switch req.op {
	case opStart:
		if w.State() != StateIdle {
			slog.Warn("capture: start ignored", "writer", w.id, "state", w.State().String())
			return false
		}
		w.setState(StatePending)
		observe.Default().CaptureSessions.Add(context.Background(), 1)
		slog.Info("capture: recording requested", "writer", w.id)
		return false

	case opPause:
		if !w.State().Terminal() {
			w.paused = true
		}
		return false

	case opResume:
		w.paused = false
		return false

	case opStop:
		w.drainSamples()
		res := w.finalize()
		w.mu.Lock()
		w.result = res
		w.mu.Unlock()
		req.reply <- res
		close(w.done)
		return true
	}
	return false
}

// drainSamples processes every sample already accepted into the queue so a
// stop never discards them. Samples appended after the stop request still
// race it and may be dropped, as with any full queue.
func (w *Writer) drainSamples() {
	for {
		select {
		case s := <-w.samples:
			w.handleSample(s)
		default:
			return
		}
	}
}

// finalize drives the session to its terminal state and produces the stop
// result.
func (w *Writer) finalize() stopResult {
	state := w.State()
	if state == StatePending || state == StateWriting {
		observe.Default().CaptureSessions.Add(context.Background(), -1)
	}

	switch state {
	case StateIdle, StatePending:
		// The sink never started — nothing was recorded.
		w.audioBuf = nil
		w.setState(StateFinished)
		slog.Info("capture: stopped before first frame", "writer", w.id)
		return stopResult{}

	case StateWriting:
		if err := w.sink.Finish(); err != nil {
			w.setState(StateFailed)
			err = fmt.Errorf("capture: finalize recording: %w", err)
			slog.Error("capture: finalize failed", "writer", w.id, "error", err)
			if aerr := w.sink.Abort(); aerr != nil {
				slog.Warn("capture: abort after failed finalize", "writer", w.id, "error", aerr)
			}
			return stopResult{err: err}
		}
		w.setState(StateFinished)
		slog.Info("capture: recording finished", "writer", w.id, "path", w.sink.Path())
		return stopResult{path: w.sink.Path()}

	case StateFailed:
		return stopResult{err: w.failure}

	default:
		return stopResult{}
	}
}

// handleSample routes one sample according to the session state.
func (w *Writer) handleSample(s media.Sample) {
	state := w.State()
	if state == StateIdle || state.Terminal() {
		return
	}
	if w.paused {
		return
	}

	switch s.Kind {
	case media.KindVideo:
		if state == StatePending {
			w.startSession(s)
			return
		}
		w.writeVideo(s)

	case media.KindAudio:
		if w.audioFormat == nil {
			return
		}
		if state == StatePending {
			// Lazy start: hold audio in arrival order until the first
			// video frame configures the sink.
			w.audioBuf = append(w.audioBuf, s)
			return
		}
		w.writeAudio(s)
	}
}

// startSession configures the sink from the first video frame, fixes the
// session zero-time, flushes buffered audio, and writes the frame.
func (w *Writer) startSession(first media.Sample) {
	// The session origin is the earliest timestamp seen on either stream.
	w.zero = first.PTS
	for _, a := range w.audioBuf {
		if a.PTS < w.zero {
			w.zero = a.PTS
		}
	}

	if err := w.sink.Start(VideoConfig{Width: first.Width, Height: first.Height}, w.audioFormat); err != nil {
		w.fail(fmt.Errorf("capture: start sink: %w", err))
		return
	}
	w.setState(StateWriting)
	slog.Info("capture: session started",
		"writer", w.id,
		"width", first.Width,
		"height", first.Height,
		"buffered_audio", len(w.audioBuf),
	)

	buffered := w.audioBuf
	w.audioBuf = nil
	for _, a := range buffered {
		if w.State() != StateWriting {
			return
		}
		w.writeAudio(a)
	}
	if w.State() == StateWriting {
		w.writeVideo(first)
	}
}

// writeVideo rebases and writes one video sample, honouring sink readiness.
func (w *Writer) writeVideo(s media.Sample) {
	if !w.sink.Ready(media.KindVideo) {
		w.countDrop(media.KindVideo, "sink_not_ready")
		return
	}
	if err := w.sink.WriteVideo(s.WithPTS(s.PTS - w.zero)); err != nil {
		w.fail(fmt.Errorf("capture: write video: %w", err))
	}
}

// writeAudio rebases (plus the fixed audio delay) and writes one audio
// sample, honouring sink readiness.
func (w *Writer) writeAudio(s media.Sample) {
	if !w.sink.Ready(media.KindAudio) {
		w.countDrop(media.KindAudio, "sink_not_ready")
		return
	}
	if err := w.sink.WriteAudio(s.WithPTS(s.PTS - w.zero + w.audioDelay)); err != nil {
		w.fail(fmt.Errorf("capture: write audio: %w", err))
	}
}

// fail transitions to StateFailed and discards the partial output. The
// error is held for the stop result; samples arriving afterwards are
// silently dropped.
func (w *Writer) fail(err error) {
	w.failure = err
	w.setState(StateFailed)
	observe.Default().CaptureSessions.Add(context.Background(), -1)
	slog.Error("capture: session failed", "writer", w.id, "error", err)
	if aerr := w.sink.Abort(); aerr != nil {
		slog.Warn("capture: abort partial output", "writer", w.id, "error", aerr)
	}
}

func (w *Writer) setState(s State) {
	w.state.Store(int32(s))
}

func (w *Writer) countDrop(kind media.Kind, reason string) {
	observe.Default().CaptureDrops.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("reason", reason),
	))
	slog.Debug("capture: sample dropped", "writer", w.id, "kind", kind.String(), "reason", reason)
}
