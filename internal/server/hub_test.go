package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_JoinLeave(t *testing.T) {
	h := NewHub()
	p1, p2 := &fakePeer{}, &fakePeer{}

	h.Join(p1, 1)
	h.Join(p1, 2)
	h.Join(p2, 2)

	assert.Equal(t, []int{1, 2}, h.Rooms(p1), "expected hub to allow several rooms per peer")
	assert.Equal(t, 1, h.Members(1))
	assert.Equal(t, 2, h.Members(2))

	left := h.LeaveAll(p1)
	assert.Equal(t, []int{1, 2}, left)
	assert.Empty(t, h.Rooms(p1))
	assert.Equal(t, 0, h.Members(1))
	assert.Equal(t, 1, h.Members(2), "expected other members to stay in room 2")
	assert.Equal(t, []int{2}, h.Rooms(p2))
	assert.NotContains(t, h.rooms, 1, "expected empty rooms to be removed")

	// look peers up by identity; distinct zero-value peers are deeply equal
	_, ok := h.peers[p1]
	assert.False(t, ok, "expected peers without rooms to be removed")
	_, ok = h.peers[p2]
	assert.True(t, ok, "expected remaining peer to be kept")
}

func TestHub_LeaveAllUnknownPeer(t *testing.T) {
	h := NewHub()
	assert.Empty(t, h.LeaveAll(&fakePeer{}))
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub()
	in1, in2, out, full := &fakePeer{}, &fakePeer{}, &fakePeer{}, &fakePeer{full: true}

	h.Join(in1, 4)
	h.Join(in2, 4)
	h.Join(full, 4)
	h.Join(out, 5)

	msg := UserTyping(4, "alice")
	delivered, dropped := h.Broadcast(4, msg)

	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []*ServerMessage{msg}, in1.received())
	assert.Equal(t, []*ServerMessage{msg}, in2.received())
	assert.Empty(t, out.received(), "expected members of other rooms to receive nothing")

	delivered, dropped = h.Broadcast(6, msg)
	assert.Zero(t, delivered)
	assert.Zero(t, dropped)
}
