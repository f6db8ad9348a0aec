package host

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_Dispatch_HookOrder(t *testing.T) {
	var order []string
	l := NewLoop(func(Message) { order = append(order, "handler") }, 0)

	_, err := l.InstallHook(func(Message) bool {
		order = append(order, "first")
		return false
	})
	require.NoError(t, err)
	_, err = l.InstallHook(func(Message) bool {
		order = append(order, "second")
		return false
	})
	require.NoError(t, err)

	l.Dispatch(Message{Type: MsgUser})

	assert.Equal(t, []string{"second", "first", "handler"}, order)
}

func TestLoop_Dispatch_HandledStopsPropagation(t *testing.T) {
	handled := 0
	l := NewLoop(func(Message) { handled++ }, 0)
	_, err := l.InstallHook(func(m Message) bool { return m.Type == MsgDeviceNotify })
	require.NoError(t, err)

	l.Dispatch(Message{Type: MsgDeviceNotify})
	l.Dispatch(Message{Type: MsgUser})

	assert.Equal(t, 1, handled, "only the unclaimed message reaches the handler")
}

func TestLoop_RemoveHook(t *testing.T) {
	l := NewLoop(nil, 0)
	id, err := l.InstallHook(func(Message) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, 1, l.HookCount())

	require.NoError(t, l.RemoveHook(id))
	assert.Equal(t, 0, l.HookCount())
	assert.ErrorIs(t, l.RemoveHook(id), ErrUnknownHook)
}

func TestLoop_InstallHook_Nil(t *testing.T) {
	l := NewLoop(nil, 0)
	_, err := l.InstallHook(nil)
	assert.ErrorIs(t, err, ErrNilHook)
}

func TestLoop_Post_QueueFull(t *testing.T) {
	l := NewLoop(nil, 1)
	require.NoError(t, l.Post(Message{Type: MsgUser}))
	assert.ErrorIs(t, l.Post(Message{Type: MsgUser}), ErrQueueFull)
}

func TestLoop_Run_DeliversInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var got []uint64
		l := NewLoop(func(m Message) {
			mu.Lock()
			got = append(got, m.WParam)
			mu.Unlock()
		}, 8)

		ctx, cancel := context.WithCancel(t.Context())
		go func() { _ = l.Run(ctx) }()

		for i := range uint64(3) {
			require.NoError(t, l.Post(Message{Type: MsgUser, WParam: i}))
		}
		synctest.Wait()
		cancel()
		<-l.Done()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []uint64{0, 1, 2}, got)
		assert.ErrorIs(t, l.Post(Message{Type: MsgUser}), ErrClosed)
	})
}

func TestMessageType_String(t *testing.T) {
	tests := []struct {
		typ  MessageType
		want string
	}{
		{MsgNone, "None"},
		{MsgDeviceNotify, "DeviceNotify"},
		{MsgUser, "User"},
		{MsgUser + 5, "User"},
		{MessageType(7), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}
