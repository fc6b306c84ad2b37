package cancomm

// Data length limits for the two frame shapes.
const (
	classicMaxDataLen = 8
	fdMaxDataLen      = 64
)

// SanitizeLen maps a requested payload length onto the nearest length a CAN
// FD DLC can declare. Lengths of 0..8 pass through unchanged; anything above
// 8 rounds up to the next boundary in {12, 16, 20, 24, 32, 48, 64}. Requests
// outside [0, 64] are clamped first. The mapping is monotone and idempotent,
// so callers may hand over an arbitrary byte count and get a conformant
// frame length back.
func SanitizeLen(n int) uint8 {
	switch {
	case n <= 0:
		return 0
	case n <= 8:
		return uint8(n)
	case n <= 12:
		return 12
	case n <= 16:
		return 16
	case n <= 20:
		return 20
	case n <= 24:
		return 24
	case n <= 32:
		return 32
	case n <= 48:
		return 48
	default:
		return 64
	}
}

// legalFDLen reports whether n is a length a CAN FD DLC can declare.
func legalFDLen(n uint8) bool {
	return n <= fdMaxDataLen && SanitizeLen(int(n)) == n
}
