package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/bgm/internal/device"
)

type recorder struct {
	mu  sync.Mutex
	got []Notify
}

func (r *recorder) Notify(n Notify) {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
}

func TestFromCode(t *testing.T) {
	tests := []struct {
		code uint32
		want Notify
	}{
		{device.CodeSuccessful, Successful},
		{device.CodeSuperseded, Superseded},
		{device.CodeAborted, Aborted},
		{device.CodeFailure, Failure},
		{0, Failure},
		{0x10, Failure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromCode(tt.code), "code %#x", tt.code)
	}
}

func TestNotify_String(t *testing.T) {
	assert.Equal(t, "Successful", Successful.String())
	assert.Equal(t, "Superseded", Superseded.String())
	assert.Equal(t, "Aborted", Aborted.String())
	assert.Equal(t, "Failure", Failure.String())
	assert.Equal(t, "Unknown", Notify(42).String())
}

func TestTable_UpsertFindRemove(t *testing.T) {
	tbl := NewTable()
	r := &recorder{}

	_, ok := tbl.Find(1)
	assert.False(t, ok)

	require.NoError(t, tbl.Upsert(1, r))
	cb, ok := tbl.Find(1)
	require.True(t, ok)
	cb.Notify(Aborted)
	assert.Equal(t, []Notify{Aborted}, r.got)

	removed, ok := tbl.Remove(1)
	require.True(t, ok)
	assert.Same(t, r, removed)
	_, ok = tbl.Find(1)
	assert.False(t, ok)

	// Removing an absent handle is a no-op.
	_, ok = tbl.Remove(1)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_UpsertOverwrites(t *testing.T) {
	tbl := NewTable()
	first, second := &recorder{}, &recorder{}

	require.NoError(t, tbl.Upsert(7, first))
	require.NoError(t, tbl.Upsert(7, second))

	cb, ok := tbl.Find(7)
	require.True(t, ok)
	assert.Same(t, second, cb)
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_UpsertNilIsNoOp(t *testing.T) {
	tbl := NewTable()
	r := &recorder{}
	require.NoError(t, tbl.Upsert(3, r))

	require.NoError(t, tbl.Upsert(3, nil))

	cb, ok := tbl.Find(3)
	require.True(t, ok)
	assert.Same(t, r, cb)
}

func TestTable_UpsertInvalidHandle(t *testing.T) {
	tbl := NewTable()
	err := tbl.Upsert(device.InvalidHandle, &recorder{})
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_RemoveIf(t *testing.T) {
	tbl := NewTable()
	mine, other := &recorder{}, &recorder{}
	require.NoError(t, tbl.Upsert(5, other))

	isMine := func(cb Callback) bool {
		r, ok := cb.(*recorder)
		return ok && r == mine
	}
	assert.False(t, tbl.RemoveIf(5, isMine))
	assert.Equal(t, 1, tbl.Len())

	require.NoError(t, tbl.Upsert(5, mine))
	assert.True(t, tbl.RemoveIf(5, isMine))
	assert.Equal(t, 0, tbl.Len())
	assert.False(t, tbl.RemoveIf(5, isMine))
}

func TestCallbackFunc(t *testing.T) {
	var got Notify = -1
	var cb Callback = CallbackFunc(func(n Notify) { got = n })
	cb.Notify(Superseded)
	assert.Equal(t, Superseded, got)
}

func TestTable_ConcurrentAccess(t *testing.T) {
	tbl := NewTable()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(h device.Handle) {
			defer wg.Done()
			for range 100 {
				_ = tbl.Upsert(h, &recorder{})
				_, _ = tbl.Find(h)
				tbl.Remove(h)
			}
		}(device.Handle(i + 1))
	}
	wg.Wait()
	assert.Equal(t, 0, tbl.Len())
}
