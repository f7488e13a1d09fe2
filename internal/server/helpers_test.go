package server

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/npezzotti/roomrelay/internal/stats"
	"github.com/npezzotti/roomrelay/internal/store"
	"github.com/npezzotti/roomrelay/internal/testutil"
	"github.com/npezzotti/roomrelay/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type seqIds struct {
	n atomic.Int64
}

func (s *seqIds) NewId() string {
	return "msg-" + strconv.FormatInt(s.n.Add(1), 10)
}

// fakePeer records everything delivered to it.
type fakePeer struct {
	mu   sync.Mutex
	msgs []*ServerMessage
	full bool
}

func (p *fakePeer) Deliver(msgs ...*ServerMessage) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.full {
		return false
	}
	p.msgs = append(p.msgs, msgs...)
	return true
}

func (p *fakePeer) received() []*ServerMessage {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*ServerMessage, len(p.msgs))
	copy(out, p.msgs)
	return out
}

func (p *fakePeer) events() []string {
	var events []string
	for _, m := range p.received() {
		events = append(events, m.Event)
	}
	return events
}

func (p *fakePeer) roomMessages() []types.Message {
	var out []types.Message
	for _, m := range p.received() {
		if m.Event == EventRoomMessage {
			out = append(out, m.Data.(types.Message))
		}
	}
	return out
}

func (p *fakePeer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = nil
}

func permissiveStats() *stats.MockStatsUpdater {
	su := &stats.MockStatsUpdater{}
	su.On("RegisterMetric", mock.Anything).Return()
	su.On("Incr", mock.Anything).Return().Maybe()
	su.On("Decr", mock.Anything).Return().Maybe()
	return su
}

// newTestChatServer creates a ChatServer for tests backed by an in-memory
// store with predictable ids unless rooms is given.
func newTestChatServer(t *testing.T, rooms store.RoomRepository, su *stats.MockStatsUpdater) *ChatServer {
	t.Helper()

	if rooms == nil {
		rooms = store.NewMemoryRoomStore(&seqIds{})
	}
	if su == nil {
		su = permissiveStats()
	}

	cs, err := NewChatServer(testutil.TestLogger(t), rooms, su)
	require.NoError(t, err, "failed to create test ChatServer")
	t.Cleanup(cs.typing.Stop)
	return cs
}

func newTestSession(cs *ChatServer, username string) (*Session, *fakePeer) {
	p := &fakePeer{}
	return cs.NewSession(p, username), p
}
