package server

import (
	"encoding/json"
	"fmt"

	"github.com/npezzotti/roomrelay/internal/types"
)

// Inbound events.
const (
	EventJoinRoom    = "join-room"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
)

// Outbound events.
const (
	EventRoomMessage       = "room-message"
	EventUserTyping        = "user-typing"
	EventUserStoppedTyping = "user-stopped-typing"
	EventJoinError         = "join-error"
	EventJoinAck           = "join-ack"
)

// ClientMessage is the envelope for every event a client sends. Data is
// decoded according to Event.
type ClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type SendMessage struct {
	RoomId   int    `json:"roomId"`
	Text     string `json:"text"`
	Message  string `json:"message,omitempty"`
	Username string `json:"username"`
}

// Content returns the message text, accepting "message" as an alias.
func (sm *SendMessage) Content() string {
	if sm.Text != "" {
		return sm.Text
	}
	return sm.Message
}

type Typing struct {
	RoomId   int    `json:"roomId"`
	Username string `json:"username"`
}

type ServerMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type TypingNotification struct {
	RoomId   int    `json:"roomId"`
	Username string `json:"username"`
}

type JoinAck struct {
	RoomId int `json:"roomId"`
}

func decodeClientMessage(raw []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if msg.Event == "" {
		return nil, fmt.Errorf("missing event name")
	}

	return &msg, nil
}

func serializeMessage(msg *ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func RoomMessage(m types.Message) *ServerMessage {
	return &ServerMessage{
		Event: EventRoomMessage,
		Data:  m,
	}
}

func UserTyping(roomId int, username string) *ServerMessage {
	return &ServerMessage{
		Event: EventUserTyping,
		Data:  TypingNotification{RoomId: roomId, Username: username},
	}
}

func UserStoppedTyping(roomId int, username string) *ServerMessage {
	return &ServerMessage{
		Event: EventUserStoppedTyping,
		Data:  TypingNotification{RoomId: roomId, Username: username},
	}
}

func JoinAcknowledged(roomId int) *ServerMessage {
	return &ServerMessage{
		Event: EventJoinAck,
		Data:  JoinAck{RoomId: roomId},
	}
}

func ErrInvalidRoom() *ServerMessage {
	return &ServerMessage{
		Event: EventJoinError,
		Data:  types.ErrInvalidRoomId.Error(),
	}
}
