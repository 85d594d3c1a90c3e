// Package app composes the interactive client from its parts.
package app

import (
	"context"
	"strings"

	"github.com/matheus3301/pawchat/internal/api"
	"github.com/matheus3301/pawchat/internal/bus"
	"github.com/matheus3301/pawchat/internal/chat"
	"github.com/matheus3301/pawchat/internal/config"
	"github.com/matheus3301/pawchat/internal/conn"
	"github.com/matheus3301/pawchat/internal/geo"
	"github.com/matheus3301/pawchat/internal/lock"
	"github.com/matheus3301/pawchat/internal/logging"
	"github.com/matheus3301/pawchat/internal/preview"
	"github.com/matheus3301/pawchat/internal/session"
	"github.com/matheus3301/pawchat/internal/store"
	"github.com/matheus3301/pawchat/internal/tui"
	"github.com/matheus3301/pawchat/internal/voice"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved invocation passed to the fx module.
type Params struct {
	DialogID string
	Config   *config.Config
}

// Module returns the fx module for the interactive client, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("pawchat",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideHistory,
			provideClient,
			provideConn,
			provideGeo,
			provideRecorder,
			provideBlobs,
			provideTUI,
			provideController,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.DialogID), p.DialogID)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.DialogID); err != nil {
		return nil, err
	}
	logger.Info("acquiring dialog lock", zap.String("dialog", p.DialogID))
	l, err := lock.Acquire(session.Dir(p.DialogID))
	if err != nil {
		return nil, err
	}
	logger.Info("dialog lock acquired")
	return l, nil
}

func provideHistory(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.HistoryDBPath(p.DialogID)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("history cache initialized", zap.String("path", dbPath))
	return db, nil
}

func provideClient(p Params) (*api.Client, error) {
	client, err := api.New(p.Config.ServerURL, p.Config.SessionCookie)
	if err != nil {
		return nil, err
	}
	if err := client.FetchCSRFToken(context.Background(), p.DialogID); err != nil {
		return nil, err
	}
	return client, nil
}

func provideConn(p Params, client *api.Client, b *bus.Bus, logger *zap.Logger) (*conn.Conn, error) {
	return conn.Dial(context.Background(), client.WebSocketURL(p.DialogID), client.SessionCookies(), b, logger)
}

func provideGeo(p Params) geo.Source {
	return &geo.CommandSource{Command: strings.Fields(p.Config.LocatorCommand)}
}

func provideRecorder(p Params) *voice.Recorder {
	return voice.NewRecorder(&voice.CommandChunkSource{Command: strings.Fields(p.Config.RecordCommand)})
}

func provideBlobs() *preview.BlobStore {
	return preview.NewBlobStore()
}

func provideTUI(p Params) *tui.App {
	return tui.New(p.DialogID)
}

func provideController(p Params, client *api.Client, c *conn.Conn, ui *tui.App, src geo.Source, rec *voice.Recorder, blobs *preview.BlobStore, db *store.DB, b *bus.Bus, logger *zap.Logger) *chat.Controller {
	return chat.NewController(chat.Config{
		DialogID: p.DialogID,
		ViewerID: p.Config.ViewerID,
		Sender:   client,
		Conn:     c,
		View:     ui,
		Geo:      src,
		Recorder: rec,
		Blobs:    blobs,
		History:  db,
		Bus:      b,
		Logger:   logger,
	})
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, ctrl *chat.Controller, c *conn.Conn, ui *tui.App, db *store.DB, lk *lock.Lock, b *bus.Bus, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ui.SetHandlers(tui.Handlers{
				OnSubmit: func(text string) {
					_ = ctrl.SubmitText(context.Background(), text)
				},
				OnInputChanged: ctrl.InputChanged,
				OnLocation: func() {
					_ = ctrl.SubmitLocation(context.Background())
				},
				OnVoiceStart: func() {
					_ = ctrl.StartVoiceCapture(context.Background())
				},
				OnVoiceStop: func() {
					_ = ctrl.StopVoiceCapture(context.Background())
				},
				OnAttach: func(paths []string) {
					_ = ctrl.AttachPaths(paths)
				},
				OnSendStaged: func() {
					_ = ctrl.SendStaged(context.Background())
				},
			})
			ui.SetOnQuit(func() {
				_ = shutdowner.Shutdown()
			})

			// Mirror channel state changes into the status bar. The
			// subscription lives for the whole process.
			states, _ := b.Subscribe(bus.TopicConnState, 8)
			go func() {
				for evt := range states {
					change, ok := evt.Payload.(conn.StateChange)
					if !ok {
						continue
					}
					ui.SetConnState(strings.ToLower(string(change.To)))
				}
			}()
			ui.SetConnState(strings.ToLower(string(c.State())))

			go func() {
				if err := ui.Run(); err != nil {
					logger.Error("ui error", zap.Error(err))
				}
			}()

			// Replay cached history before delivering live frames.
			go func() {
				if err := ctrl.LoadHistory(200); err != nil {
					logger.Warn("history replay failed", zap.Error(err))
				}
				c.ReadLoop(ctrl.HandleFrame)
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			ui.Stop()
			ctrl.Close()
			if err := c.Close(); err != nil {
				logger.Warn("error closing channel", zap.Error(err))
			}
			if err := db.Close(); err != nil {
				logger.Warn("error closing history cache", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
