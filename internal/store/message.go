package store

import "time"

// Delivery status of a cached message. Outgoing messages start at "sent"
// (single check) and move to "read" (double check) on a read receipt.
const (
	StatusNone = "none"
	StatusSent = "sent"
	StatusRead = "read"
)

// Message is a cached dialog message.
type Message struct {
	ID        int64
	DialogID  string
	MsgID     int64
	SenderID  int64
	Content   string
	Outgoing  bool
	Status    string
	CreatedAt string
}

// UpsertMessage inserts or updates a message (idempotent on dialog_id + msg_id).
func (db *DB) UpsertMessage(m *Message) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO messages (dialog_id, msg_id, sender_id, content, outgoing, status, created_at, inserted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dialog_id, msg_id) DO UPDATE SET
			content = excluded.content,
			status = excluded.status`,
		m.DialogID, m.MsgID, m.SenderID, m.Content, m.Outgoing, m.Status, m.CreatedAt, now)
	return err
}

// MarkRead upgrades an outgoing message to read status. Unknown ids are a
// no-op, matching the renderer's behavior for receipts on unseen messages.
func (db *DB) MarkRead(dialogID string, msgID int64) error {
	_, err := db.Exec(`
		UPDATE messages SET status = ?
		WHERE dialog_id = ? AND msg_id = ? AND outgoing = 1`,
		StatusRead, dialogID, msgID)
	return err
}

// ListMessages returns up to limit messages for a dialog in arrival order.
func (db *DB) ListMessages(dialogID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := db.Query(`
		SELECT id, dialog_id, msg_id, sender_id, content, outgoing, status, created_at
		FROM messages
		WHERE dialog_id = ?
		ORDER BY id ASC
		LIMIT ?`, dialogID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.DialogID, &m.MsgID, &m.SenderID, &m.Content, &m.Outgoing, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
