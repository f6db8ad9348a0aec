// Package router routes device completion notifications flowing through
// the host message loop to the callbacks bound in a dispatch table.
package router

import (
	"github.com/llehouerou/bgm/internal/device"
	"github.com/llehouerou/bgm/internal/dispatch"
	"github.com/llehouerou/bgm/internal/host"
)

// New returns a hook that claims device notifications whose handle has a
// binding in table and invokes that callback on the calling goroutine.
// Every other message is left to the rest of the chain. The hook only
// reads the table; it never issues device commands.
func New(table *dispatch.Table) host.Hook {
	return func(msg host.Message) bool {
		if msg.Type != host.MsgDeviceNotify {
			return false
		}
		cb, ok := table.Find(device.HandleOf(msg))
		if !ok {
			return false
		}
		cb.Notify(dispatch.FromCode(uint32(msg.WParam)))
		return true
	}
}
