package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/pawchat/internal/geo"
	"github.com/matheus3301/pawchat/internal/preview"
	"github.com/matheus3301/pawchat/internal/upload"
	"github.com/matheus3301/pawchat/internal/view"
	"github.com/matheus3301/pawchat/internal/voice"
)

// fakeSender records action calls and returns a configurable error.
type fakeSender struct {
	mu        sync.Mutex
	texts     []string
	locations [][2]float64
	clips     []voice.Clip
	files     []string
	err       error
}

func (f *fakeSender) SendText(_ context.Context, _ string, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, content)
	return nil
}

func (f *fakeSender) SendLocation(_ context.Context, _ string, lat, lon float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.locations = append(f.locations, [2]float64{lat, lon})
	return nil
}

func (f *fakeSender) SendVoice(_ context.Context, _ string, clip voice.Clip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.clips = append(f.clips, clip)
	return nil
}

func (f *fakeSender) SendFile(_ context.Context, _ string, info upload.FileInfo, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.files = append(f.files, info.Name)
	return nil
}

func (f *fakeSender) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts) + len(f.locations) + len(f.clips) + len(f.files)
}

// fakeConn records typing signals with their arrival times.
type fakeConn struct {
	mu      sync.Mutex
	signals []bool
	times   []time.Time
}

func (f *fakeConn) SendTyping(typing bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, typing)
	f.times = append(f.times, time.Now())
	return nil
}

func (f *fakeConn) snapshot() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.signals...)
}

// fakeView records render calls.
type fakeView struct {
	mu        sync.Mutex
	messages  []view.Message
	reads     []int64
	typing    []bool
	presence  []bool
	previews  []preview.Preview
	errors    []string
	clearedN  int
}

func (f *fakeView) AppendMessage(m view.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
}

func (f *fakeView) MarkRead(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, id)
}

func (f *fakeView) SetTyping(_ string, typing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing = append(f.typing, typing)
}

func (f *fakeView) SetPresence(online bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presence = append(f.presence, online)
}

func (f *fakeView) ShowPreview(p preview.Preview) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previews = append(f.previews, p)
}

func (f *fakeView) ShowError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, msg)
}

func (f *fakeView) ClearInput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearedN++
}

type fakeGeo struct {
	pos geo.Position
	err error
}

func (f *fakeGeo) CurrentPosition(_ context.Context) (geo.Position, error) {
	if f.err != nil {
		return geo.Position{}, f.err
	}
	return f.pos, nil
}

// pipeChunkSource feeds the recorder from an in-memory pipe.
type pipeChunkSource struct {
	pr *io.PipeReader
	pw *io.PipeWriter
}

func newPipeChunkSource() *pipeChunkSource {
	pr, pw := io.Pipe()
	return &pipeChunkSource{pr: pr, pw: pw}
}

func (s *pipeChunkSource) Start(_ context.Context) (io.ReadCloser, error) {
	return s.pr, nil
}

type fixture struct {
	ctrl   *Controller
	sender *fakeSender
	conn   *fakeConn
	view   *fakeView
	geo    *fakeGeo
	mic    *pipeChunkSource
}

func newFixture(t *testing.T, mut func(*Config)) *fixture {
	t.Helper()
	f := &fixture{
		sender: &fakeSender{},
		conn:   &fakeConn{},
		view:   &fakeView{},
		geo:    &fakeGeo{pos: geo.Position{Latitude: 10, Longitude: 20}},
		mic:    newPipeChunkSource(),
	}
	cfg := Config{
		DialogID: "42",
		ViewerID: 12,
		Sender:   f.sender,
		Conn:     f.conn,
		View:     f.view,
		Geo:      f.geo,
		Recorder: voice.NewRecorder(f.mic),
	}
	if mut != nil {
		mut(&cfg)
	}
	f.ctrl = NewController(cfg)
	t.Cleanup(f.ctrl.Close)
	return f
}

func TestSubmitText(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.ctrl.SubmitText(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}

	if len(f.sender.texts) != 1 || f.sender.texts[0] != "hello" {
		t.Errorf("texts = %v, want [hello]", f.sender.texts)
	}
	if f.view.clearedN != 1 {
		t.Errorf("input cleared %d times, want 1", f.view.clearedN)
	}
}

func TestSubmitTextEmptyIsNoop(t *testing.T) {
	f := newFixture(t, nil)

	for _, content := range []string{"", "   ", "\n\t "} {
		if err := f.ctrl.SubmitText(context.Background(), content); err != nil {
			t.Fatal(err)
		}
	}

	if n := f.sender.calls(); n != 0 {
		t.Errorf("got %d requests, want 0 for empty input", n)
	}
	if f.view.clearedN != 0 {
		t.Error("input should not be cleared for empty submissions")
	}
}

func TestSubmitTextFailureLeavesInput(t *testing.T) {
	f := newFixture(t, nil)
	f.sender.err = fmt.Errorf("boom")

	if err := f.ctrl.SubmitText(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}

	if f.view.clearedN != 0 {
		t.Error("input must stay untouched on failure")
	}
	if len(f.view.errors) != 1 {
		t.Errorf("got %d user errors, want 1", len(f.view.errors))
	}
}

func TestTypingDebounceCollapsesBurst(t *testing.T) {
	quiet := 60 * time.Millisecond
	f := newFixture(t, func(cfg *Config) { cfg.TypingQuiet = quiet })

	// Three keystrokes inside the quiet window.
	f.ctrl.InputChanged()
	time.Sleep(20 * time.Millisecond)
	f.ctrl.InputChanged()
	time.Sleep(20 * time.Millisecond)
	f.ctrl.InputChanged()

	// Wait past the last keystroke's quiet window.
	time.Sleep(quiet + 50*time.Millisecond)

	got := f.conn.snapshot()
	want := []bool{true, false}
	if len(got) != len(want) {
		t.Fatalf("signals = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("signals = %v, want %v", got, want)
		}
	}

	// A fresh burst sends typing=true again.
	f.ctrl.InputChanged()
	time.Sleep(quiet + 50*time.Millisecond)
	got = f.conn.snapshot()
	if len(got) != 4 || !got[2] || got[3] {
		t.Errorf("signals after second burst = %v, want [true false true false]", got)
	}
}

func TestTypingFalseDelayedByLastKeystroke(t *testing.T) {
	quiet := 80 * time.Millisecond
	f := newFixture(t, func(cfg *Config) { cfg.TypingQuiet = quiet })

	start := time.Now()
	f.ctrl.InputChanged()
	time.Sleep(40 * time.Millisecond)
	f.ctrl.InputChanged() // resets the timer

	time.Sleep(quiet + 60*time.Millisecond)

	f.conn.mu.Lock()
	defer f.conn.mu.Unlock()
	if len(f.conn.signals) != 2 {
		t.Fatalf("signals = %v, want [true false]", f.conn.signals)
	}
	elapsed := f.conn.times[1].Sub(start)
	// false must fire ~quiet after the second keystroke (40ms), not the first.
	if elapsed < 100*time.Millisecond {
		t.Errorf("typing=false after %v, want >= 120ms from burst start", elapsed)
	}
}

func TestSubmitLocation(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.ctrl.SubmitLocation(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(f.sender.locations) != 1 {
		t.Fatalf("locations = %v", f.sender.locations)
	}
	if f.sender.locations[0] != [2]float64{10, 20} {
		t.Errorf("coords = %v, want [10 20]", f.sender.locations[0])
	}
	if len(f.view.previews) != 1 || f.view.previews[0].Kind != preview.KindMap {
		t.Errorf("previews = %v, want one map preview", f.view.previews)
	}
}

func TestSubmitLocationDenied(t *testing.T) {
	f := newFixture(t, nil)
	f.geo.err = geo.ErrUnavailable

	if err := f.ctrl.SubmitLocation(context.Background()); !errors.Is(err, geo.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}

	if n := f.sender.calls(); n != 0 {
		t.Errorf("got %d requests, want 0 when location is denied", n)
	}
	if len(f.view.errors) != 1 {
		t.Errorf("got %d user errors, want 1", len(f.view.errors))
	}
}

func TestVoiceCaptureRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.ctrl.StartVoiceCapture(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := f.mic.pw.Write([]byte("audio-bytes")); err != nil {
		t.Fatal(err)
	}
	if err := f.ctrl.StopVoiceCapture(ctx); err != nil {
		t.Fatal(err)
	}

	if len(f.sender.clips) != 1 {
		t.Fatalf("clips = %d, want 1", len(f.sender.clips))
	}
	clip := f.sender.clips[0]
	if string(clip.Data) != "audio-bytes" {
		t.Errorf("clip data = %q", clip.Data)
	}
	if clip.Duration != 1 {
		t.Errorf("duration = %d, want 1", clip.Duration)
	}
	if len(f.view.previews) != 1 || f.view.previews[0].Kind != preview.KindAudio {
		t.Errorf("previews = %v, want one audio preview", f.view.previews)
	}
}

func TestStopVoiceWithoutRecordingIsNoop(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.ctrl.StopVoiceCapture(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := f.sender.calls(); n != 0 {
		t.Errorf("got %d requests, want 0", n)
	}
	if len(f.view.errors) != 0 {
		t.Errorf("got user errors %v, want none", f.view.errors)
	}
}

func TestSecondVoiceStartSurfaced(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.ctrl.StartVoiceCapture(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.ctrl.StopVoiceCapture(ctx) }()

	if err := f.ctrl.StartVoiceCapture(ctx); !errors.Is(err, voice.ErrRecordingActive) {
		t.Errorf("second start = %v, want ErrRecordingActive", err)
	}
	if len(f.view.errors) != 1 {
		t.Errorf("got %d user errors, want 1", len(f.view.errors))
	}
}

func TestAttachFilesValidatesInOrder(t *testing.T) {
	f := newFixture(t, nil)

	files := []Attachment{
		{Info: upload.FileInfo{Name: "ok.png", Size: 10, MIMEType: "image/png"}},
		{Info: upload.FileInfo{Name: "bad.exe", Size: 10, MIMEType: "application/x-msdownload"}},
		{Info: upload.FileInfo{Name: "never.png", Size: 10, MIMEType: "image/png"}},
	}

	err := f.ctrl.AttachFiles(files)
	if !errors.Is(err, upload.ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}

	// The file accepted before the violation stays previewed.
	if len(f.view.previews) != 1 {
		t.Errorf("previews = %d, want 1", len(f.view.previews))
	}
	if f.ctrl.StagedCount() != 1 {
		t.Errorf("staged = %d, want 1", f.ctrl.StagedCount())
	}
	if len(f.view.errors) != 1 {
		t.Errorf("user errors = %d, want 1", len(f.view.errors))
	}
}

func TestSendStaged(t *testing.T) {
	f := newFixture(t, nil)

	files := []Attachment{
		{Info: upload.FileInfo{Name: "a.png", Size: 1, MIMEType: "image/png"}, Data: []byte{1}},
		{Info: upload.FileInfo{Name: "b.pdf", Size: 1, MIMEType: "application/pdf"}, Data: []byte{2}},
	}
	if err := f.ctrl.AttachFiles(files); err != nil {
		t.Fatal(err)
	}

	if err := f.ctrl.SendStaged(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.sender.files) != 2 {
		t.Fatalf("uploaded = %v, want 2 files", f.sender.files)
	}
	if f.ctrl.StagedCount() != 0 {
		t.Errorf("staged = %d, want 0 after upload", f.ctrl.StagedCount())
	}
}
