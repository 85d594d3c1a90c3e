// Package conn owns the single WebSocket channel of a dialog session.
package conn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/pawchat/internal/bus"
	"github.com/matheus3301/pawchat/internal/protocol"
	"go.uber.org/zap"
)

// ErrNotOpen is returned when sending on a channel that is not open.
var ErrNotOpen = errors.New("connection not open")

// writeWait bounds a single outbound write so a stalled peer cannot block
// the sender indefinitely.
const writeWait = 10 * time.Second

// Conn is one live dialog channel. Inbound frames are delivered serially by
// the read loop; outbound writes are serialized by a mutex.
type Conn struct {
	ws      *websocket.Conn
	machine *Machine
	logger  *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dial establishes the dialog channel and moves the state machine from
// Connecting to Open. The session cookies authenticate the upgrade request.
func Dial(ctx context.Context, wsURL string, cookies []*http.Cookie, b *bus.Bus, logger *zap.Logger) (*Conn, error) {
	machine := NewMachine(b)

	header := http.Header{}
	for _, ck := range cookies {
		header.Add("Cookie", ck.String())
	}

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		_ = machine.Transition(Closed)
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	_ = machine.Transition(Open)
	logger.Info("channel open", zap.String("url", wsURL))

	return &Conn{ws: ws, machine: machine, logger: logger}, nil
}

// State returns the current channel state.
func (c *Conn) State() State {
	return c.machine.Current()
}

// ReadLoop delivers raw inbound frames to handler, one at a time, until the
// channel closes. Closure is logged and reflected in the state machine; no
// reconnection is attempted.
func (c *Conn) ReadLoop(handler func(data []byte)) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Warn("channel closed", zap.Error(err))
			c.markClosed()
			return
		}
		handler(data)
	}
}

// SendTyping sends an outbound typing signal frame.
func (c *Conn) SendTyping(typing bool) error {
	if c.machine.Current() != Open {
		return ErrNotOpen
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(protocol.NewTypingFrame(typing))
}

// Close shuts the channel down.
func (c *Conn) Close() error {
	c.markClosed()
	return c.ws.Close()
}

func (c *Conn) markClosed() {
	c.closeOnce.Do(func() {
		_ = c.machine.Transition(Closed)
	})
}
