package cancomm

import (
	"encoding/binary"
	"fmt"
)

// Wire layouts follow <linux/can.h>. A buffer is classified as classic or FD
// by its exact byte count, not by a type field.
//
// struct can_frame (16 bytes, little-endian):
//
//	0..3  can_id (EFF/RTR/ERR flags in the top bits)
//	4     len
//	5..7  padding/reserved
//	8..15 data
//
// struct canfd_frame (72 bytes):
//
//	0..3  can_id (same flag bits)
//	4     len (already a legal FD length)
//	5     flags (bit-rate switch request)
//	6..7  reserved
//	8..71 data
const (
	classicFrameSize = 16
	fdFrameSize      = 72

	canEffFlag = 0x80000000
	canRtrFlag = 0x40000000
	canErrFlag = 0x20000000
	canEffMask = 0x1FFFFFFF
	canStdMask = 0x7FF

	canfdBRS = 0x01 // request higher data-phase bit rate
)

// errRemoteFrame marks a decoded remote transmission request. RTR frames
// carry no payload semantics for a session; Receive swallows them.
var errRemoteFrame = fmt.Errorf("cancomm: remote transmission request")

// MarshalBinary encodes the frame to the SocketCAN wire layout: 16 bytes for
// classic frames, 72 bytes for FD frames. Payload bytes beyond Len up to the
// declared length are zero.
func (f Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	id := f.ID
	if f.Extended {
		id |= canEffFlag
	}
	if f.ErrorFrame {
		id |= canErrFlag
	}
	if f.FD {
		buf := make([]byte, fdFrameSize)
		binary.LittleEndian.PutUint32(buf[0:4], id)
		buf[4] = f.Len
		buf[5] = canfdBRS
		copy(buf[8:], f.Data[:f.Len])
		return buf, nil
	}
	buf := make([]byte, classicFrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.Len
	copy(buf[8:], f.Data[:f.Len])
	return buf, nil
}

// UnmarshalBinary decodes a frame from the SocketCAN wire layout, selecting
// the shape by the exact buffer size. Remote transmission requests are
// reported as an error so callers can drop them without building a Frame.
// Error indications decode with ID=0 and Len=0, flagged via ErrorFrame.
func (f *Frame) UnmarshalBinary(data []byte) error {
	switch len(data) {
	case classicFrameSize, fdFrameSize:
	default:
		return fmt.Errorf("cancomm: need %d or %d bytes, got %d",
			classicFrameSize, fdFrameSize, len(data))
	}
	id := binary.LittleEndian.Uint32(data[0:4])
	if id&canRtrFlag != 0 {
		return errRemoteFrame
	}
	*f = Frame{FD: len(data) == fdFrameSize}
	if id&canErrFlag != 0 {
		f.ErrorFrame = true
		return nil
	}
	f.Extended = id&canEffFlag != 0
	if f.Extended {
		f.ID = id & canEffMask
	} else {
		f.ID = id & canStdMask
	}
	f.Len = data[4]
	if int(f.Len) > len(data)-8 {
		return ErrInvalidLength
	}
	copy(f.Data[:], data[8:8+f.Len])
	return f.Validate()
}
