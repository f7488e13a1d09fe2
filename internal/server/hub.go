package server

import (
	"sort"
	"sync"
)

// Peer is one end of a connection that can receive server events.
// Deliver must not block; it reports false if the events were dropped.
type Peer interface {
	Deliver(msgs ...*ServerMessage) bool
}

// Hub tracks room group membership and fans events out to room members.
// It allows a peer to be in several rooms; callers that need exclusive
// membership leave all rooms before joining.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[Peer]struct{}
	peers map[Peer]map[int]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int]map[Peer]struct{}),
		peers: make(map[Peer]map[int]struct{}),
	}
}

func (h *Hub) Join(p Peer, roomId int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomId] == nil {
		h.rooms[roomId] = make(map[Peer]struct{})
	}
	h.rooms[roomId][p] = struct{}{}

	if h.peers[p] == nil {
		h.peers[p] = make(map[int]struct{})
	}
	h.peers[p][roomId] = struct{}{}
}

// LeaveAll removes p from every room and returns the rooms it left.
func (h *Hub) LeaveAll(p Peer) []int {
	h.mu.Lock()
	defer h.mu.Unlock()

	left := make([]int, 0, len(h.peers[p]))
	for roomId := range h.peers[p] {
		left = append(left, roomId)
	}
	for _, roomId := range left {
		h.leave(p, roomId)
	}
	sort.Ints(left)

	return left
}

func (h *Hub) leave(p Peer, roomId int) {
	if members, ok := h.rooms[roomId]; ok {
		delete(members, p)
		if len(members) == 0 {
			delete(h.rooms, roomId)
		}
	}

	if rooms, ok := h.peers[p]; ok {
		delete(rooms, roomId)
		if len(rooms) == 0 {
			delete(h.peers, p)
		}
	}
}

func (h *Hub) Rooms(p Peer) []int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]int, 0, len(h.peers[p]))
	for roomId := range h.peers[p] {
		rooms = append(rooms, roomId)
	}
	sort.Ints(rooms)

	return rooms
}

func (h *Hub) Members(roomId int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomId])
}

// Broadcast delivers msg to every member of the room. It returns how
// many members accepted it and how many dropped it.
func (h *Hub) Broadcast(roomId int, msg *ServerMessage) (delivered, dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for p := range h.rooms[roomId] {
		if p.Deliver(msg) {
			delivered++
		} else {
			dropped++
		}
	}

	return delivered, dropped
}
