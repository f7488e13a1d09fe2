package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/npezzotti/roomrelay/internal/types"
	"github.com/rs/zerolog"
)

// Session is the server side state of one connection: a fixed username
// and at most one joined room.
type Session struct {
	id       string
	username string
	peer     Peer
	cs       *ChatServer
	log      zerolog.Logger
	mu       sync.Mutex
	// roomId is 0 until the first successful join
	roomId int
}

func (cs *ChatServer) NewSession(peer Peer, username string) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		username: username,
		peer:     peer,
		cs:       cs,
		log: cs.log.With().
			Str("session_id", id).
			Str("username", username).
			Logger(),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Username() string {
	return s.username
}

// CurrentRoom returns the joined room, if any.
func (s *Session) CurrentRoom() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.roomId, s.roomId != 0
}

// Handle decodes one raw client event and dispatches it. Malformed
// events are logged and dropped.
func (s *Session) Handle(raw []byte) {
	msg, err := decodeClientMessage(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring malformed message")
		return
	}

	switch msg.Event {
	case EventJoinRoom:
		var roomId int
		if err := json.Unmarshal(msg.Data, &roomId); err != nil {
			s.log.Debug().Err(err).Msg("join payload is not a room number")
			s.peer.Deliver(ErrInvalidRoom())
			return
		}
		s.Join(roomId)
	case EventSendMessage:
		var sm SendMessage
		if err := json.Unmarshal(msg.Data, &sm); err != nil {
			s.log.Warn().Err(err).Msg("ignoring malformed send-message")
			return
		}
		s.SendMessage(sm.Content())
	case EventTyping:
		s.Typing()
	default:
		s.log.Warn().Str("event", msg.Event).Msg("ignoring unknown event")
	}
}

// Join moves the session into roomId, leaving any room it was in, then
// replays the room's history and acknowledges the join. Only this
// session sees the replay and the ack.
func (s *Session) Join(roomId int) {
	if !types.ValidRoomId(roomId) {
		s.log.Info().Int("room_id", roomId).Msg("rejected join to invalid room")
		s.peer.Deliver(ErrInvalidRoom())
		return
	}

	unlock := s.cs.lockRoom(roomId)
	defer unlock()

	s.mu.Lock()
	wasJoined := s.roomId != 0
	s.roomId = roomId
	s.mu.Unlock()

	left := s.cs.hub.LeaveAll(s.peer)
	s.cs.hub.Join(s.peer, roomId)
	if !wasJoined {
		s.cs.stats.Incr(MetricJoinedSessions)
	}

	history := s.cs.rooms.History(roomId)
	out := make([]*ServerMessage, 0, len(history)+1)
	for _, m := range history {
		out = append(out, RoomMessage(m))
	}
	out = append(out, JoinAcknowledged(roomId))

	if !s.peer.Deliver(out...) {
		s.cs.stats.Incr(MetricDroppedEvents)
		s.log.Warn().Int("room_id", roomId).Msg("dropped join replay")
	}

	s.log.Info().
		Int("room_id", roomId).
		Ints("left", left).
		Int("replayed", len(history)).
		Msg("joined room")
}

// SendMessage stores text in the session's room and broadcasts it to the
// room, sender included. It does nothing before the first join.
func (s *Session) SendMessage(text string) {
	roomId, ok := s.CurrentRoom()
	if !ok {
		s.log.Debug().Msg("ignoring message sent outside a room")
		return
	}

	unlock := s.cs.lockRoom(roomId)
	defer unlock()

	msg := s.cs.rooms.Append(roomId, s.username, text)
	s.cs.stats.Incr(MetricMessages)
	s.cs.broadcast(roomId, RoomMessage(msg))
}

// Typing refreshes the session's typing entry and notifies the room on
// every call.
func (s *Session) Typing() {
	roomId, ok := s.CurrentRoom()
	if !ok {
		s.log.Debug().Msg("ignoring typing outside a room")
		return
	}

	unlock := s.cs.lockRoom(roomId)
	defer unlock()

	if s.cs.typing.MarkTyping(roomId, s.username) {
		s.cs.stats.Incr(MetricTypingEntries)
	}
	s.cs.broadcast(roomId, UserTyping(roomId, s.username))
}

// Disconnect releases room membership. Typing entries are keyed by
// username and expire on their own schedule.
func (s *Session) Disconnect() {
	s.mu.Lock()
	wasJoined := s.roomId != 0
	s.roomId = 0
	s.mu.Unlock()

	left := s.cs.hub.LeaveAll(s.peer)
	if wasJoined {
		s.cs.stats.Decr(MetricJoinedSessions)
	}

	s.log.Info().Ints("left", left).Msg("session disconnected")
}
