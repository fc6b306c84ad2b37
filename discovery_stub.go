//go:build !linux

package cancomm

// CAN interface discovery relies on SocketCAN and is Linux-only.
func listDevices() []string {
	return nil
}
