//go:build linux

package cancomm

import (
	"net"

	"golang.org/x/sys/unix"
)

// listDevices walks the host interfaces and keeps the ones whose hardware
// address family is ARPHRD_CAN. The family is probed through a SIOCGIFHWADDR
// ioctl on a throwaway CAN socket rather than by matching names, so renamed
// interfaces are found and lookalike names are not.
func listDevices() []string {
	ifis, err := net.Interfaces()
	if err != nil {
		return nil
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil
	}
	defer unix.Close(fd)
	var names []string
	for _, ifi := range ifis {
		if isCANFamily(fd, ifi.Name) {
			names = append(names, ifi.Name)
		}
	}
	return names
}

func isCANFamily(fd int, name string) bool {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return false
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFHWADDR, ifr); err != nil {
		return false
	}
	// The ifreq union starts with sockaddr.sa_family.
	return ifr.Uint16() == unix.ARPHRD_CAN
}
