// Package chat contains the session controller: it mediates between the
// view, the dialog channel and the HTTP action endpoints for one dialog.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/matheus3301/pawchat/internal/bus"
	"github.com/matheus3301/pawchat/internal/geo"
	"github.com/matheus3301/pawchat/internal/preview"
	"github.com/matheus3301/pawchat/internal/store"
	"github.com/matheus3301/pawchat/internal/upload"
	"github.com/matheus3301/pawchat/internal/view"
	"github.com/matheus3301/pawchat/internal/voice"
	"go.uber.org/zap"
)

// DefaultTypingQuiet is how long the composer must stay idle before the
// typing=false signal is emitted.
const DefaultTypingQuiet = 3 * time.Second

// Sender issues the per-action HTTP requests.
type Sender interface {
	SendText(ctx context.Context, dialogID, content string) error
	SendLocation(ctx context.Context, dialogID string, lat, lon float64) error
	SendVoice(ctx context.Context, dialogID string, clip voice.Clip) error
	SendFile(ctx context.Context, dialogID string, info upload.FileInfo, data []byte) error
}

// TypingConn sends typing signals over the dialog channel.
type TypingConn interface {
	SendTyping(typing bool) error
}

// Attachment is a locally selected file plus its contents.
type Attachment struct {
	Info upload.FileInfo
	Data []byte
}

// Config assembles a Controller.
type Config struct {
	DialogID string
	ViewerID int64 // messages from this sender render as outgoing
	Sender   Sender
	Conn     TypingConn
	View     view.View
	Geo      geo.Source
	Recorder *voice.Recorder
	Blobs    *preview.BlobStore
	History  *store.DB // optional local cache; nil disables
	Bus      *bus.Bus
	Logger   *zap.Logger
	// TypingQuiet overrides the typing debounce interval. Zero means
	// DefaultTypingQuiet.
	TypingQuiet time.Duration
}

// Controller owns one dialog session. All failures of user-initiated
// actions are surfaced through the view immediately; nothing is retried
// or queued.
type Controller struct {
	dialogID string
	viewerID int64
	sender   Sender
	conn     TypingConn
	view     view.View
	geo      geo.Source
	recorder *voice.Recorder
	blobs    *preview.BlobStore
	history  *store.DB
	bus      *bus.Bus
	logger   *zap.Logger
	quiet    time.Duration

	typingMu    sync.Mutex
	typingTimer *time.Timer

	recMu     sync.Mutex
	activeRec *voice.Recording

	stageMu sync.Mutex
	staged  []Attachment
}

// NewController creates the session controller for one dialog.
func NewController(cfg Config) *Controller {
	quiet := cfg.TypingQuiet
	if quiet == 0 {
		quiet = DefaultTypingQuiet
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	blobs := cfg.Blobs
	if blobs == nil {
		blobs = preview.NewBlobStore()
	}
	return &Controller{
		dialogID: cfg.DialogID,
		viewerID: cfg.ViewerID,
		sender:   cfg.Sender,
		conn:     cfg.Conn,
		view:     cfg.View,
		geo:      cfg.Geo,
		recorder: cfg.Recorder,
		blobs:    blobs,
		history:  cfg.History,
		bus:      cfg.Bus,
		logger:   logger,
		quiet:    quiet,
	}
}

// SubmitText sends the composer content. Empty or whitespace-only content
// is a no-op and issues no request. On success the composer is cleared; on
// failure it is left untouched and the error is surfaced.
func (c *Controller) SubmitText(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	if err := c.sender.SendText(ctx, c.dialogID, content); err != nil {
		c.fail("Could not send message", err)
		return err
	}
	c.view.ClearInput()
	c.publish(bus.TopicSent, "text")
	return nil
}

// InputChanged reports a composer keystroke. The first change of a burst
// sends typing=true immediately; typing=false follows once the composer has
// been quiet for the debounce interval. At most one timer is pending.
func (c *Controller) InputChanged() {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	if c.typingTimer == nil {
		if err := c.conn.SendTyping(true); err != nil {
			c.logger.Warn("typing signal failed", zap.Error(err))
		}
	} else {
		c.typingTimer.Stop()
	}

	c.typingTimer = time.AfterFunc(c.quiet, func() {
		c.typingMu.Lock()
		c.typingTimer = nil
		c.typingMu.Unlock()
		if err := c.conn.SendTyping(false); err != nil {
			c.logger.Warn("typing signal failed", zap.Error(err))
		}
	})
}

// AttachFiles validates the selection in order. The first violation aborts
// the remaining files and surfaces the error; files already previewed stay
// previewed. Accepted files are staged for SendStaged.
func (c *Controller) AttachFiles(files []Attachment) error {
	for _, f := range files {
		if err := upload.Validate(f.Info); err != nil {
			c.fail(err.Error(), err)
			return err
		}
		c.view.ShowPreview(preview.ForFile(f.Info, f.Data, c.blobs))
		c.stageMu.Lock()
		c.staged = append(c.staged, f)
		c.stageMu.Unlock()
	}
	return nil
}

// AttachPaths resolves local paths and attaches them.
func (c *Controller) AttachPaths(paths []string) error {
	var files []Attachment
	for _, p := range paths {
		f, err := loadAttachment(p)
		if err != nil {
			c.fail("Could not read file", err)
			return err
		}
		files = append(files, f)
	}
	return c.AttachFiles(files)
}

// SendStaged uploads the staged attachments in order. The first failure
// stops the batch; already uploaded files are not re-sent.
func (c *Controller) SendStaged(ctx context.Context) error {
	for {
		c.stageMu.Lock()
		if len(c.staged) == 0 {
			c.stageMu.Unlock()
			return nil
		}
		f := c.staged[0]
		c.stageMu.Unlock()

		if err := c.sender.SendFile(ctx, c.dialogID, f.Info, f.Data); err != nil {
			c.fail("Could not send file", err)
			return err
		}

		c.stageMu.Lock()
		c.staged = c.staged[1:]
		c.stageMu.Unlock()
		c.publish(bus.TopicSent, "file")
	}
}

// StagedCount reports how many attachments await upload.
func (c *Controller) StagedCount() int {
	c.stageMu.Lock()
	defer c.stageMu.Unlock()
	return len(c.staged)
}

// SubmitLocation resolves the device position once and sends it. Denial,
// absence of a locator and HTTP failures are surfaced; nothing is retried.
func (c *Controller) SubmitLocation(ctx context.Context) error {
	pos, err := c.geo.CurrentPosition(ctx)
	if err != nil {
		c.fail("Could not send location", err)
		return err
	}

	if err := c.sender.SendLocation(ctx, c.dialogID, pos.Latitude, pos.Longitude); err != nil {
		c.fail("Could not send location", err)
		return err
	}
	c.view.ShowPreview(preview.ForLocation(pos.Latitude, pos.Longitude))
	c.publish(bus.TopicSent, "location")
	return nil
}

// StartVoiceCapture begins microphone capture. A second start while one is
// active is rejected and surfaced.
func (c *Controller) StartVoiceCapture(ctx context.Context) error {
	c.recMu.Lock()
	defer c.recMu.Unlock()

	rec, err := c.recorder.Start(ctx)
	if err != nil {
		c.fail("Could not access microphone", err)
		return err
	}
	c.activeRec = rec
	return nil
}

// StopVoiceCapture halts capture, waits for the recording to finish and
// sends the clip. A stop with no active recording is a no-op.
func (c *Controller) StopVoiceCapture(ctx context.Context) error {
	c.recMu.Lock()
	rec := c.activeRec
	c.activeRec = nil
	c.recMu.Unlock()

	if rec == nil {
		return nil
	}

	clip, err := c.recorder.Stop(rec)
	if err != nil {
		if errors.Is(err, voice.ErrNoActiveRecording) {
			return nil
		}
		c.fail("Could not record voice message", err)
		return err
	}

	if err := c.sender.SendVoice(ctx, c.dialogID, clip); err != nil {
		c.fail("Could not send voice message", err)
		return err
	}
	c.view.ShowPreview(preview.ForAudio(clip.Data, clip.MIMEType, c.blobs))
	c.publish(bus.TopicSent, "voice")
	return nil
}

// Close cancels the pending typing timer, if any.
func (c *Controller) Close() {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
}

func (c *Controller) fail(userMsg string, err error) {
	c.logger.Error(userMsg, zap.Error(err))
	c.view.ShowError(userMsg)
	c.publish(bus.TopicError, userMsg)
}

func (c *Controller) publish(topic string, payload any) {
	if c.bus != nil {
		c.bus.Publish(bus.Event{Topic: topic, At: time.Now(), Payload: payload})
	}
}
