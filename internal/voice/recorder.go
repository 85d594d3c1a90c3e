// Package voice captures short voice notes from an audio source command and
// assembles them into a single clip.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Failures.
var (
	ErrMicrophoneUnavailable = errors.New("microphone unavailable")
	ErrRecordingActive       = errors.New("a recording is already active")
	ErrNoActiveRecording     = errors.New("no active recording")
)

// approxBytesPerSecond is the fixed-bitrate approximation used to estimate
// clip duration from its byte size. Not measured time.
const approxBytesPerSecond = 16000

// Clip is a finished voice note.
type Clip struct {
	Data     []byte
	MIMEType string
	Duration int // estimated seconds
}

// EstimateDuration approximates clip duration in whole seconds from its size.
func EstimateDuration(byteSize int) int {
	return (byteSize + approxBytesPerSecond - 1) / approxBytesPerSecond
}

// ChunkSource begins audio capture and exposes it as a byte stream.
// Closing the stream releases the capture device.
type ChunkSource interface {
	Start(ctx context.Context) (io.ReadCloser, error)
}

// Recorder owns at most one active recording at a time. A second Start while
// one is active is rejected with ErrRecordingActive.
type Recorder struct {
	source ChunkSource

	mu     sync.Mutex
	active *Recording
}

// NewRecorder creates a recorder backed by the given capture source.
func NewRecorder(source ChunkSource) *Recorder {
	return &Recorder{source: source}
}

// Start begins capture and returns the active recording handle.
func (r *Recorder) Start(ctx context.Context) (*Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return nil, ErrRecordingActive
	}

	stream, err := r.source.Start(ctx)
	if err != nil {
		if errors.Is(err, ErrMicrophoneUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMicrophoneUnavailable, err)
	}

	rec := &Recording{
		stream: stream,
		done:   make(chan struct{}),
	}
	go rec.drain()
	r.active = rec
	return rec, nil
}

// Stop halts the given recording, waits for the capture stream to confirm it
// has finished, and returns the assembled clip. The active slot is released
// whether or not assembly succeeds.
func (r *Recorder) Stop(rec *Recording) (Clip, error) {
	r.mu.Lock()
	if r.active != rec || rec == nil {
		r.mu.Unlock()
		return Clip{}, ErrNoActiveRecording
	}
	r.active = nil
	r.mu.Unlock()

	return rec.stop()
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Recording accumulates audio chunks between Start and Stop.
type Recording struct {
	stream io.ReadCloser
	done   chan struct{}

	mu     sync.Mutex
	chunks [][]byte
}

// drain reads capture chunks until the stream ends. Closing done is the
// asynchronous confirmation that capture has finished.
func (rec *Recording) drain() {
	defer close(rec.done)
	buf := make([]byte, 4096)
	for {
		n, err := rec.stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			rec.mu.Lock()
			rec.chunks = append(rec.chunks, chunk)
			rec.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (rec *Recording) stop() (Clip, error) {
	// Release the capture device, then wait for the drain goroutine to
	// confirm it has observed the end of the stream.
	_ = rec.stream.Close()
	<-rec.done

	rec.mu.Lock()
	defer rec.mu.Unlock()
	var size int
	for _, c := range rec.chunks {
		size += len(c)
	}
	data := make([]byte, 0, size)
	for _, c := range rec.chunks {
		data = append(data, c...)
	}

	return Clip{
		Data:     data,
		MIMEType: "audio/mpeg",
		Duration: EstimateDuration(len(data)),
	}, nil
}
