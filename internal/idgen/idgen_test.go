package idgen

import (
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tcases := []struct {
		name   string
		scheme string
		err    bool
	}{
		{name: "default", scheme: ""},
		{name: "shortid", scheme: SchemeShortId},
		{name: "ulid", scheme: SchemeULID},
		{name: "unknown", scheme: "nanoid", err: true},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			gen, err := New(tc.scheme)
			if tc.err {
				assert.Error(t, err, "expected error for scheme %q", tc.scheme)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, gen.NewId(), "expected non-empty id")
		})
	}
}

func TestGeneratorsProduceUniqueIds(t *testing.T) {
	sid, err := NewShortId()
	require.NoError(t, err)

	gens := map[string]Generator{
		"shortid": sid,
		"ulid":    NewULID(),
	}

	for name, gen := range gens {
		t.Run(name, func(t *testing.T) {
			var (
				mu   sync.Mutex
				wg   sync.WaitGroup
				seen = make(map[string]struct{})
			)

			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 250; j++ {
						id := gen.NewId()
						mu.Lock()
						seen[id] = struct{}{}
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Len(t, seen, 2000, "expected every generated id to be unique")
		})
	}
}

func TestULIDIsParsable(t *testing.T) {
	id := NewULID().NewId()
	_, err := ulid.Parse(id)
	assert.NoError(t, err, "expected a valid ulid, got %q", id)
}
