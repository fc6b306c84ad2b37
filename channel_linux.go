//go:build linux

package cancomm

import (
	"net"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// rawChannel implements Channel over a Linux SocketCAN raw socket.
type rawChannel struct {
	fd     int
	device string
}

// dialChannel opens a raw CAN socket bound to the given interface name
// (e.g., "can0").
func dialChannel(device string) (Channel, error) {
	ifi, err := net.InterfaceByName(device)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, err
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &rawChannel{fd: fd, device: device}, nil
}

func (c *rawChannel) Read(p []byte) (int, error) {
	return unix.Read(c.fd, p)
}

func (c *rawChannel) Write(p []byte) (int, error) {
	return unix.Write(c.fd, p)
}

func (c *rawChannel) SetNonblock() error {
	return unix.SetNonblock(c.fd, true)
}

// MTU queries the bound interface's transport unit via SIOCGIFMTU. A CAN FD
// configured interface reports 72, classic reports 16.
func (c *rawChannel) MTU() (int, error) {
	ifr, err := unix.NewIfreq(c.device)
	if err != nil {
		return 0, err
	}
	if err := unix.IoctlIfreq(c.fd, unix.SIOCGIFMTU, ifr); err != nil {
		return 0, err
	}
	return int(ifr.Uint32()), nil
}

// EnableFD opts the socket into FD frames. Classic frames keep flowing as
// 16-byte reads afterwards.
func (c *rawChannel) EnableFD() error {
	return unix.SetsockoptInt(c.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FD_FRAMES, 1)
}

// ReceiveTimestamp fetches the kernel timestamp of the last received frame
// via SIOCGSTAMP.
func (c *rawChannel) ReceiveTimestamp() (time.Time, error) {
	var tv unix.Timeval
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(c.fd),
		uintptr(unix.SIOCGSTAMP), uintptr(unsafe.Pointer(&tv)))
	if errno != 0 {
		return time.Time{}, errno
	}
	return time.Unix(tv.Unix()), nil
}

func (c *rawChannel) Close() error {
	return unix.Close(c.fd)
}
