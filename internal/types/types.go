package types

import "errors"

const (
	MinRoomId = 1
	MaxRoomId = 50
)

var ErrInvalidRoomId = errors.New("Invalid room number")

// Message is a chat message stored in a room's history. It is never
// modified after the store assigns its MessageId.
type Message struct {
	RoomId    int    `json:"roomId"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	MessageId string `json:"messageId"`
}

func ValidRoomId(roomId int) bool {
	return roomId >= MinRoomId && roomId <= MaxRoomId
}
