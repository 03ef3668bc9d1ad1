// Package bus abstracts the CAN transport behind a small send/receive
// contract. Implementations exist for Linux socketcan, SLCAN over a serial
// port, an in-memory loopback hub and a disabled no-op used when no real
// channel can be opened. All implementations are safe for concurrent use.
package bus

import (
	"errors"
	"fmt"
	"time"
)

// Frame is the unit of exchange on the bus: a payload of up to 8 bytes
// tagged with a numeric identifier.
type Frame struct {
	ID   uint32
	Data []byte
}

// String renders the frame as "ID: 0x1A0 Data: [12 34]".
func (f Frame) String() string {
	return fmt.Sprintf("ID: 0x%03X Data: [% 02X]", f.ID, f.Data)
}

// Bus is the transport contract shared by all channel types.
type Bus interface {
	// Send transmits a frame. Best effort: errors are reported to the
	// caller for logging, never retried.
	Send(id uint32, data []byte) error

	// Receive waits up to timeout for a frame. ok is false on timeout.
	Receive(timeout time.Duration) (f Frame, ok bool, err error)

	// Close releases the channel. Safe to call more than once.
	Close() error
}

var (
	// ErrClosed indicates the bus has been closed.
	ErrClosed = errors.New("bus: closed")
	// ErrTooLong indicates a payload above the classical CAN limit.
	ErrTooLong = errors.New("bus: payload exceeds 8 bytes")
)
