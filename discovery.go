package cancomm

// DeviceList is an owned snapshot of the CAN-capable interface names present
// on the host at discovery time. It stays valid after later discoveries;
// rerun ListDevices for a fresh view.
type DeviceList struct {
	names []string
}

// ListDevices enumerates the host's network interfaces and keeps those of
// the CAN hardware family, in enumeration order. The order is whatever the
// host reports and is not guaranteed stable across calls if interfaces come
// and go. Enumeration failure yields an empty list.
func ListDevices() DeviceList {
	return DeviceList{names: listDevices()}
}

// Len returns the number of discovered devices.
func (l DeviceList) Len() int { return len(l.names) }

// Name returns the device name at index i, reporting false when i is out of
// range.
func (l DeviceList) Name(i int) (string, bool) {
	if i < 0 || i >= len(l.names) {
		return "", false
	}
	return l.names[i], true
}
