package cancomm

import (
	"errors"
	"fmt"
)

// Frame represents a CAN frame as seen by a Session.
//
// Supported features:
//   - Standard (11-bit) and Extended (29-bit) identifiers
//   - Classic frames with 0-8 data bytes
//   - CAN FD frames with a data length from the legal FD set (up to 64)
//   - Bus error indications, flagged via ErrorFrame
//
// Remote transmission requests are handled on the wire but never surface
// as a Frame; Receive silently discards them.
type Frame struct {
	ID         uint32 // 11-bit (std) or 29-bit (ext)
	Extended   bool   // true for 29-bit identifier
	FD         bool   // true for CAN FD framing
	ErrorFrame bool   // bus error indication; ID and Len carry no meaning
	Len        uint8  // 0..8 classic, legal FD length otherwise
	Data       [64]byte
	Timestamp  uint64 // microseconds since the session connect epoch
}

// Validation limits.
const (
	maxStdID = 0x7FF
	maxExtID = 0x1FFFFFFF
)

var (
	ErrInvalidID     = errors.New("cancomm: invalid identifier")
	ErrInvalidLength = errors.New("cancomm: invalid data length")
)

// Validate returns an error if the frame is not valid.
func (f Frame) Validate() error {
	if f.FD {
		if !legalFDLen(f.Len) {
			return ErrInvalidLength
		}
	} else if f.Len > classicMaxDataLen {
		return ErrInvalidLength
	}
	if f.Extended {
		if f.ID > maxExtID {
			return ErrInvalidID
		}
	} else {
		if f.ID > maxStdID {
			return ErrInvalidID
		}
	}
	return nil
}

// MustFrame constructs a Frame and panics if invalid. Convenience for examples
// and tests. Identifiers above the standard range select the extended format;
// payloads above 8 bytes select CAN FD framing with a sanitized length.
func MustFrame(id uint32, data []byte) Frame {
	var f Frame
	f.ID = id
	if id > maxStdID {
		f.Extended = true
	}
	if len(data) > fdMaxDataLen {
		panic(ErrInvalidLength)
	}
	if len(data) > classicMaxDataLen {
		f.FD = true
		f.Len = SanitizeLen(len(data))
	} else {
		f.Len = uint8(len(data))
	}
	copy(f.Data[:], data)
	if err := f.Validate(); err != nil {
		panic(err)
	}
	return f
}

// String renders the frame in a candump-like form, e.g. "123 [2] DE AD".
func (f Frame) String() string {
	var s string
	if f.Extended {
		s = fmt.Sprintf("%08X [%d]", f.ID, f.Len)
	} else {
		s = fmt.Sprintf("%03X [%d]", f.ID, f.Len)
	}
	if f.Len > 0 {
		s += fmt.Sprintf(" % X", f.Data[:f.Len])
	}
	if f.FD {
		s += " FD"
	}
	if f.ErrorFrame {
		s += " ERR"
	}
	return s
}
