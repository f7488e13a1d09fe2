package store

import (
	"sync"

	"github.com/npezzotti/roomrelay/internal/idgen"
	"github.com/npezzotti/roomrelay/internal/types"
)

// MemoryRoomStore keeps room histories in process memory. Room ids are
// not validated; a room's history is created on first append.
type MemoryRoomStore struct {
	ids   idgen.Generator
	mu    sync.RWMutex
	rooms map[int][]types.Message
}

func NewMemoryRoomStore(ids idgen.Generator) *MemoryRoomStore {
	return &MemoryRoomStore{
		ids:   ids,
		rooms: make(map[int][]types.Message),
	}
}

func (s *MemoryRoomStore) Append(roomId int, username, text string) types.Message {
	msg := types.Message{
		RoomId:    roomId,
		Username:  username,
		Text:      text,
		MessageId: s.ids.NewId(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[roomId] = append(s.rooms[roomId], msg)

	return msg
}

// History returns a copy of the room's messages in arrival order.
func (s *MemoryRoomStore) History(roomId int) []types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.rooms[roomId]
	out := make([]types.Message, len(msgs))
	copy(out, msgs)

	return out
}
