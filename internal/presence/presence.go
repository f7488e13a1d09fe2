package presence

import (
	"sort"
	"sync"
	"time"
)

// TypingTimeout is how long a typing entry stays live without a refresh.
const TypingTimeout = 5000 * time.Millisecond

type ExpireFunc func(roomId int, username string)

type stopper interface {
	Stop() bool
}

type key struct {
	roomId   int
	username string
}

type entry struct {
	gen   uint64
	timer stopper
}

// Tracker holds the per (room, username) typing state. Each entry owns
// exactly one pending timer; refreshing an entry cancels and replaces that
// timer under the same lock, and the generation number keeps a timer that
// already fired from removing the refreshed entry.
type Tracker struct {
	ttl      time.Duration
	onExpire ExpireFunc
	mu       sync.Mutex
	entries  map[key]*entry
	gen      uint64
	stopped  bool
	// afterFunc schedules f after d; replaced in tests
	afterFunc func(d time.Duration, f func()) stopper
}

func NewTracker(ttl time.Duration, onExpire ExpireFunc) *Tracker {
	return &Tracker{
		ttl:      ttl,
		onExpire: onExpire,
		entries:  make(map[key]*entry),
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// MarkTyping records that username is typing in roomId. It reports true
// when a new entry was created and false when an existing entry's
// deadline was pushed back.
func (t *Tracker) MarkTyping(roomId int, username string) bool {
	k := key{roomId: roomId, username: username}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return false
	}

	t.gen++
	gen := t.gen
	timer := t.afterFunc(t.ttl, func() { t.expire(k, gen) })

	if e, ok := t.entries[k]; ok {
		e.timer.Stop()
		e.gen = gen
		e.timer = timer
		return false
	}

	t.entries[k] = &entry{gen: gen, timer: timer}
	return true
}

func (t *Tracker) expire(k key, gen uint64) {
	t.mu.Lock()
	e, ok := t.entries[k]
	if !ok || e.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.entries, k)
	t.mu.Unlock()

	if t.onExpire != nil {
		t.onExpire(k.roomId, k.username)
	}
}

func (t *Tracker) IsTyping(roomId int, username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.entries[key{roomId: roomId, username: username}]
	return ok
}

// CurrentTypists returns the sorted usernames typing in roomId.
func (t *Tracker) CurrentTypists(roomId int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	typists := []string{}
	for k := range t.entries {
		if k.roomId == roomId {
			typists = append(typists, k.username)
		}
	}
	sort.Strings(typists)

	return typists
}

// Stop cancels all pending timers without firing expiry callbacks.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for k, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, k)
	}
	t.stopped = true
}
