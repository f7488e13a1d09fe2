package store

import (
	"github.com/npezzotti/roomrelay/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Append(roomId int, username, text string) types.Message {
	args := m.Called(roomId, username, text)
	return args.Get(0).(types.Message)
}

func (m *MockRoomRepository) History(roomId int) []types.Message {
	args := m.Called(roomId)
	if msgs, ok := args.Get(0).([]types.Message); ok {
		return msgs
	}
	return nil
}
