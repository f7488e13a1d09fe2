package server

import (
	"context"
	"sync"

	"github.com/npezzotti/roomrelay/internal/presence"
	"github.com/npezzotti/roomrelay/internal/stats"
	"github.com/npezzotti/roomrelay/internal/store"
	"github.com/npezzotti/roomrelay/internal/types"
	"github.com/rs/zerolog"
)

const (
	MetricActiveClients  = "NumActiveClients"
	MetricJoinedSessions = "NumJoinedSessions"
	MetricMessages       = "NumMessages"
	MetricTypingEntries  = "NumTypingEntries"
	MetricDroppedEvents  = "NumDroppedEvents"
)

var metrics = []string{
	MetricActiveClients,
	MetricJoinedSessions,
	MetricMessages,
	MetricTypingEntries,
	MetricDroppedEvents,
}

type ChatServer struct {
	log    zerolog.Logger
	hub    *Hub
	rooms  store.RoomRepository
	typing *presence.Tracker
	stats  stats.StatsProvider
	// roomLocks serializes history changes with their fan-out, and joins
	// with their replay, per room
	roomLocks   [types.MaxRoomId + 1]sync.Mutex
	clients     map[*Client]struct{}
	clientsLock sync.Mutex
	clientsWg   sync.WaitGroup
}

func NewChatServer(logger zerolog.Logger, rooms store.RoomRepository, su stats.StatsProvider) (*ChatServer, error) {
	cs := &ChatServer{
		log:     logger,
		hub:     NewHub(),
		rooms:   rooms,
		stats:   su,
		clients: make(map[*Client]struct{}),
	}
	cs.typing = presence.NewTracker(presence.TypingTimeout, cs.handleTypingExpired)

	for _, m := range metrics {
		su.RegisterMetric(m)
	}

	return cs, nil
}

func (cs *ChatServer) lockRoom(roomId int) func() {
	mu := &cs.roomLocks[roomId]
	mu.Lock()
	return mu.Unlock
}

func (cs *ChatServer) broadcast(roomId int, msg *ServerMessage) {
	delivered, dropped := cs.hub.Broadcast(roomId, msg)
	for i := 0; i < dropped; i++ {
		cs.stats.Incr(MetricDroppedEvents)
	}

	cs.log.Debug().
		Int("room_id", roomId).
		Str("event", msg.Event).
		Int("delivered", delivered).
		Int("dropped", dropped).
		Msg("broadcast")
}

func (cs *ChatServer) handleTypingExpired(roomId int, username string) {
	cs.stats.Decr(MetricTypingEntries)

	unlock := cs.lockRoom(roomId)
	defer unlock()

	// the user started typing again between expiry and taking the lock
	if cs.typing.IsTyping(roomId, username) {
		return
	}

	cs.log.Debug().Int("room_id", roomId).Str("username", username).Msg("typing expired")
	cs.broadcast(roomId, UserStoppedTyping(roomId, username))
}

// History returns the stored messages of a room.
func (cs *ChatServer) History(roomId int) []types.Message {
	return cs.rooms.History(roomId)
}

// CurrentTypists returns the users currently typing in a room.
func (cs *ChatServer) CurrentTypists(roomId int) []string {
	return cs.typing.CurrentTypists(roomId)
}

func (cs *ChatServer) addClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()

	cs.clients[c] = struct{}{}
	cs.clientsWg.Add(1)
	cs.stats.Incr(MetricActiveClients)
}

func (cs *ChatServer) removeClient(c *Client) {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()

	if _, ok := cs.clients[c]; !ok {
		return
	}

	delete(cs.clients, c)
	cs.clientsWg.Done()
	cs.stats.Decr(MetricActiveClients)
}

// Shutdown stops every connected client and waits for their connections
// to be cleaned up. Pending typing timers are cancelled.
func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.log.Info().Msg("shutting down chat server")
	cs.typing.Stop()

	cs.clientsLock.Lock()
	for c := range cs.clients {
		c.stopClient()
	}
	cs.clientsLock.Unlock()

	done := make(chan struct{})
	go func() {
		cs.clientsWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
