//go:build linux

package bus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// socketCAN is a raw AF_CAN socket bound to one interface, using the
// classical 16-byte can_frame wire layout.
type socketCAN struct {
	fd   int
	once sync.Once
}

const (
	canEffFlag = 0x80000000
	canRtrFlag = 0x40000000
	canEffMask = 0x1FFFFFFF
	canStdMask = 0x7FF

	canFrameSize = 16
)

// OpenSocketCAN binds a raw CAN socket to the named interface.
func OpenSocketCAN(ifname string) (Bus, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socketcan socket: %w", err)
	}
	ifi, err := net.InterfaceByName(ifname)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socketcan interface %s: %w", ifname, err)
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socketcan bind %s: %w", ifname, err)
	}
	return &socketCAN{fd: fd}, nil
}

// Send writes one can_frame.
func (s *socketCAN) Send(id uint32, data []byte) error {
	if len(data) > 8 {
		return ErrTooLong
	}
	var buf [canFrameSize]byte
	wireID := id
	if id > canStdMask {
		wireID |= canEffFlag
	}
	binary.LittleEndian.PutUint32(buf[0:4], wireID)
	buf[4] = byte(len(data))
	copy(buf[8:], data)
	_, err := unix.Write(s.fd, buf[:])
	return err
}

// Receive blocks up to timeout on the socket read via SO_RCVTIMEO.
func (s *socketCAN) Receive(timeout time.Duration) (Frame, bool, error) {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return Frame{}, false, err
	}
	var buf [canFrameSize]byte
	n, err := unix.Read(s.fd, buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return Frame{}, false, nil
		}
		if errors.Is(err, unix.EBADF) {
			return Frame{}, false, ErrClosed
		}
		return Frame{}, false, err
	}
	if n < canFrameSize {
		return Frame{}, false, fmt.Errorf("socketcan: short read of %d bytes", n)
	}
	wireID := binary.LittleEndian.Uint32(buf[0:4])
	if wireID&canRtrFlag != 0 {
		// Remote requests carry no data; skip them.
		return Frame{}, false, nil
	}
	id := wireID & canStdMask
	if wireID&canEffFlag != 0 {
		id = wireID & canEffMask
	}
	dlc := int(buf[4])
	if dlc > 8 {
		dlc = 8
	}
	data := make([]byte, dlc)
	copy(data, buf[8:8+dlc])
	return Frame{ID: id, Data: data}, true, nil
}

// Close shuts the socket down exactly once.
func (s *socketCAN) Close() error {
	var err error
	s.once.Do(func() { err = unix.Close(s.fd) })
	return err
}
