package voice

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// CommandChunkSource captures audio by running a recorder command
// (arecord, sox, ffmpeg and similar) and streaming its stdout.
type CommandChunkSource struct {
	// Command is the capture invocation, split into argv. Empty means the
	// host has no capture device configured.
	Command []string
}

// Start launches the capture process. The returned stream yields encoded
// audio; closing it terminates the process and releases the device.
func (s *CommandChunkSource) Start(ctx context.Context) (io.ReadCloser, error) {
	if len(s.Command) == 0 {
		return nil, ErrMicrophoneUnavailable
	}

	cmd := exec.Command(s.Command[0], s.Command[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMicrophoneUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMicrophoneUnavailable, err)
	}

	ps := &processStream{cmd: cmd, out: stdout, quit: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			_ = cmd.Process.Kill()
		case <-ps.quit:
		}
	}()

	return ps, nil
}

type processStream struct {
	cmd  *exec.Cmd
	out  io.ReadCloser
	quit chan struct{}
	once sync.Once
}

func (p *processStream) Read(b []byte) (int, error) {
	return p.out.Read(b)
}

// Close stops the capture process, reaps it and releases the context
// watcher.
func (p *processStream) Close() error {
	p.once.Do(func() { close(p.quit) })
	_ = p.cmd.Process.Kill()
	_ = p.out.Close()
	_ = p.cmd.Wait()
	return nil
}
