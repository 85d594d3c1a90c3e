package voice

import (
	"context"
	"errors"
	"io"
	"testing"
)

// pipeSource hands the recorder one end of an in-memory pipe so tests can
// feed audio chunks deterministically.
type pipeSource struct {
	pr  *io.PipeReader
	pw  *io.PipeWriter
	err error
}

func newPipeSource() *pipeSource {
	pr, pw := io.Pipe()
	return &pipeSource{pr: pr, pw: pw}
}

func (s *pipeSource) Start(_ context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pr, nil
}

func TestRecordConcatenatesChunks(t *testing.T) {
	src := newPipeSource()
	r := NewRecorder(src)

	rec, err := r.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Unbuffered pipe: Write returns only after the drain loop consumed it.
	if _, err := src.pw.Write([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	if _, err := src.pw.Write([]byte("def")); err != nil {
		t.Fatal(err)
	}

	clip, err := r.Stop(rec)
	if err != nil {
		t.Fatal(err)
	}
	if string(clip.Data) != "abcdef" {
		t.Errorf("clip data = %q, want abcdef", clip.Data)
	}
	if clip.MIMEType != "audio/mpeg" {
		t.Errorf("mime = %q", clip.MIMEType)
	}
	if clip.Duration != 1 {
		t.Errorf("duration = %d, want 1", clip.Duration)
	}
	if r.Active() {
		t.Error("recorder still active after stop")
	}
}

func TestSecondStartRejected(t *testing.T) {
	src := newPipeSource()
	r := NewRecorder(src)

	rec, err := r.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _, _ = r.Stop(rec) }()

	if _, err := r.Start(context.Background()); !errors.Is(err, ErrRecordingActive) {
		t.Errorf("second Start = %v, want ErrRecordingActive", err)
	}
}

func TestStartUnavailable(t *testing.T) {
	src := newPipeSource()
	src.err = ErrMicrophoneUnavailable
	r := NewRecorder(src)

	if _, err := r.Start(context.Background()); !errors.Is(err, ErrMicrophoneUnavailable) {
		t.Errorf("Start = %v, want ErrMicrophoneUnavailable", err)
	}
	if r.Active() {
		t.Error("recorder should not be active after failed start")
	}
}

func TestStopWithoutRecording(t *testing.T) {
	r := NewRecorder(newPipeSource())
	if _, err := r.Stop(nil); !errors.Is(err, ErrNoActiveRecording) {
		t.Errorf("Stop = %v, want ErrNoActiveRecording", err)
	}
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{0, 0},
		{1, 1},
		{16000, 1},
		{16001, 2},
		{48000, 3},
	}
	for _, tt := range tests {
		if got := EstimateDuration(tt.size); got != tt.want {
			t.Errorf("EstimateDuration(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestCommandSourceUnavailableWhenUnconfigured(t *testing.T) {
	s := &CommandChunkSource{}
	if _, err := s.Start(context.Background()); !errors.Is(err, ErrMicrophoneUnavailable) {
		t.Errorf("Start = %v, want ErrMicrophoneUnavailable", err)
	}
}
