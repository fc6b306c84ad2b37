// Package cancomm provides convenient, session-oriented access to
// Controller Area Network (CAN) communication in Go.
//
// It includes:
//   - A Session that owns one connected CAN interface and exchanges
//     classic and CAN FD frames without blocking
//   - Discovery of the CAN-capable network interfaces on the host
//   - An in-memory loopback channel for tests and simulations
//   - Filtered fan-out (Mux) and slog-based logging decorators
//
// The Linux channel implementation uses SocketCAN via golang.org/x/sys.
package cancomm
