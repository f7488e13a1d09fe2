package store

import "github.com/npezzotti/roomrelay/internal/types"

// RoomRepository owns the message history of every room.
type RoomRepository interface {
	Append(roomId int, username, text string) types.Message
	History(roomId int) []types.Message
}
