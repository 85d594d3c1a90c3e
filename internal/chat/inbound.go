package chat

import (
	"errors"

	"github.com/matheus3301/pawchat/internal/bus"
	"github.com/matheus3301/pawchat/internal/protocol"
	"github.com/matheus3301/pawchat/internal/store"
	"github.com/matheus3301/pawchat/internal/view"
	"go.uber.org/zap"
)

// HandleFrame decodes one inbound channel frame and dispatches it.
// Unknown and malformed frames are dropped without user notification.
// Frames arrive serially from the connection read loop.
func (c *Controller) HandleFrame(data []byte) {
	evt, err := protocol.DecodeInbound(data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownType) {
			c.logger.Debug("dropping unknown frame", zap.Error(err))
		} else {
			c.logger.Warn("dropping malformed frame", zap.Error(err))
		}
		return
	}

	switch e := evt.(type) {
	case protocol.NewMessage:
		c.handleNewMessage(e.Message)
	case protocol.Typing:
		c.view.SetTyping(e.User.Username, e.User.Typing)
		c.publish(bus.TopicTyping, e.User)
	case protocol.UserStatus:
		c.view.SetPresence(e.User.IsOnline)
		c.publish(bus.TopicPresence, e.User)
	case protocol.MessageRead:
		c.handleMessageRead(e.MessageID)
	}
}

func (c *Controller) handleNewMessage(m protocol.Message) {
	outgoing := m.SenderID == c.viewerID
	status := view.StatusNone
	if outgoing {
		status = view.StatusSent
	}

	c.view.AppendMessage(view.Message{
		ID:       m.ID,
		SenderID: m.SenderID,
		Content:  m.Content,
		Time:     m.Time(),
		Outgoing: outgoing,
		Status:   status,
	})

	if c.history != nil {
		err := c.history.UpsertMessage(&store.Message{
			DialogID:  c.dialogID,
			MsgID:     m.ID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			Outgoing:  outgoing,
			Status:    status,
			CreatedAt: m.CreatedAt,
		})
		if err != nil {
			c.logger.Error("history upsert failed", zap.Error(err), zap.Int64("msg_id", m.ID))
		}
	}

	c.publish(bus.TopicMessage, &m)
}

func (c *Controller) handleMessageRead(messageID int64) {
	c.view.MarkRead(messageID)

	if c.history != nil {
		if err := c.history.MarkRead(c.dialogID, messageID); err != nil {
			c.logger.Error("history mark read failed", zap.Error(err), zap.Int64("msg_id", messageID))
		}
	}

	c.publish(bus.TopicRead, messageID)
}

// LoadHistory replays cached messages into the view, oldest first.
func (c *Controller) LoadHistory(limit int) error {
	if c.history == nil {
		return nil
	}
	msgs, err := c.history.ListMessages(c.dialogID, limit)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		c.view.AppendMessage(view.Message{
			ID:       m.MsgID,
			SenderID: m.SenderID,
			Content:  m.Content,
			Time:     protocol.ParseTime(m.CreatedAt),
			Outgoing: m.Outgoing,
			Status:   m.Status,
		})
	}
	return nil
}
