package idgen

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

const (
	SchemeShortId = "shortid"
	SchemeULID    = "ulid"
)

// Generator produces unique message identifiers.
type Generator interface {
	NewId() string
}

func New(scheme string) (Generator, error) {
	switch scheme {
	case "", SchemeShortId:
		return NewShortId()
	case SchemeULID:
		return NewULID(), nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}

type ShortId struct {
	sid *shortid.Shortid
}

func NewShortId() (*ShortId, error) {
	seed := uint64(time.Now().UnixNano())
	sid, err := shortid.New(1, shortid.DefaultABC, seed)
	if err != nil {
		return nil, fmt.Errorf("shortid: %w", err)
	}

	return &ShortId{sid: sid}, nil
}

// NewId returns a shortid. shortid only errors once its internal clock
// space is exhausted, in which case a ULID is returned instead.
func (s *ShortId) NewId() string {
	id, err := s.sid.Generate()
	if err != nil || id == "" {
		return ulid.Make().String()
	}

	return id
}

type ULID struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULID() *ULID {
	return &ULID{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (u *ULID) NewId() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), u.entropy)
	if err != nil {
		// monotonic overflow within one millisecond
		return ulid.Make().String()
	}

	return id.String()
}
