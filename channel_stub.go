//go:build !linux

package cancomm

import "errors"

// SocketCAN is Linux-only. Sessions on other platforms need an explicit
// Dialer, e.g. a loopback channel.
func dialChannel(device string) (Channel, error) {
	return nil, errors.New("cancomm: socketcan requires linux")
}
