package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeNewMessage(t *testing.T) {
	raw := []byte(`{"type":"new_message","message":{"id":7,"sender_id":3,"content":"hi","created_at":"2026-01-02T15:04:05Z"}}`)
	evt, err := DecodeInbound(raw)
	if err != nil {
		t.Fatal(err)
	}
	nm, ok := evt.(NewMessage)
	if !ok {
		t.Fatalf("got %T, want NewMessage", evt)
	}
	if nm.Message.ID != 7 || nm.Message.SenderID != 3 || nm.Message.Content != "hi" {
		t.Errorf("message = %+v", nm.Message)
	}
	if nm.Message.Time().IsZero() {
		t.Error("timestamp should parse")
	}
}

func TestDecodeTyping(t *testing.T) {
	raw := []byte(`{"type":"typing","user":{"id":3,"username":"ann","typing":true}}`)
	evt, err := DecodeInbound(raw)
	if err != nil {
		t.Fatal(err)
	}
	ty, ok := evt.(Typing)
	if !ok {
		t.Fatalf("got %T, want Typing", evt)
	}
	if !ty.User.Typing || ty.User.Username != "ann" {
		t.Errorf("user = %+v", ty.User)
	}
}

func TestDecodeUserStatus(t *testing.T) {
	raw := []byte(`{"type":"user_status","user":{"id":3,"is_online":true}}`)
	evt, err := DecodeInbound(raw)
	if err != nil {
		t.Fatal(err)
	}
	us, ok := evt.(UserStatus)
	if !ok {
		t.Fatalf("got %T, want UserStatus", evt)
	}
	if !us.User.IsOnline {
		t.Error("user should be online")
	}
}

func TestDecodeMessageRead(t *testing.T) {
	raw := []byte(`{"type":"message_read","message_id":42}`)
	evt, err := DecodeInbound(raw)
	if err != nil {
		t.Fatal(err)
	}
	mr, ok := evt.(MessageRead)
	if !ok {
		t.Fatalf("got %T, want MessageRead", evt)
	}
	if mr.MessageID != 42 {
		t.Errorf("message id = %d, want 42", mr.MessageID)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := DecodeInbound([]byte(`{"type":"reaction","emoji":"x"}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("err = %v, want ErrUnknownType", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeInbound([]byte(`{not json`))
	if err == nil {
		t.Fatal("malformed frame should error")
	}
	if errors.Is(err, ErrUnknownType) {
		t.Error("malformed frame should not be ErrUnknownType")
	}
}

func TestTypingFrameWire(t *testing.T) {
	data, err := json.Marshal(NewTypingFrame(true))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"typing","typing":true}`
	if string(data) != want {
		t.Errorf("frame = %s, want %s", data, want)
	}
}
