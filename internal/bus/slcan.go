package bus

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	serial "go.bug.st/serial"
)

// slcanBus speaks the SLCAN (Lawicel) ASCII framing over a serial port:
// 't' + 3 hex digits of identifier + length digit + hex payload + CR for
// standard frames, 'T' + 8 hex digits for extended ones. A reader goroutine
// assembles inbound lines into frames; Receive drains them with a timeout.
type slcanBus struct {
	port   serial.Port
	wmu    sync.Mutex
	frames chan Frame

	once sync.Once
	done chan struct{}
}

// OpenSLCAN opens the serial device and puts the adapter on the bus with
// the 'O' (open channel) command.
func OpenSLCAN(device string, baud int) (Bus, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("slcan open %s: %w", device, err)
	}
	if _, err := port.Write([]byte("O\r")); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("slcan open channel: %w", err)
	}
	b := &slcanBus{
		port:   port,
		frames: make(chan Frame, 64),
		done:   make(chan struct{}),
	}
	go b.readLoop()
	return b, nil
}

func (b *slcanBus) readLoop() {
	r := bufio.NewReader(b.port)
	for {
		line, err := r.ReadString('\r')
		select {
		case <-b.done:
			return
		default:
		}
		if err != nil {
			// Port errors are non-fatal until Close; back off and retry.
			time.Sleep(50 * time.Millisecond)
			continue
		}
		f, err := parseSLCAN(line)
		if err != nil {
			continue // adapter status replies and garbage
		}
		select {
		case b.frames <- f:
		default:
			// Drop when the consumer lags.
		}
	}
}

// Send writes one SLCAN line for the frame.
func (b *slcanBus) Send(id uint32, data []byte) error {
	if len(data) > 8 {
		return ErrTooLong
	}
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	line := marshalSLCAN(id, data)
	b.wmu.Lock()
	_, err := b.port.Write([]byte(line))
	b.wmu.Unlock()
	return err
}

// Receive waits up to timeout for the reader goroutine to produce a frame.
func (b *slcanBus) Receive(timeout time.Duration) (Frame, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case f := <-b.frames:
		return f, true, nil
	case <-timer.C:
		return Frame{}, false, nil
	case <-b.done:
		return Frame{}, false, ErrClosed
	}
}

// Close takes the adapter off the bus and closes the port.
func (b *slcanBus) Close() error {
	var err error
	b.once.Do(func() {
		close(b.done)
		b.wmu.Lock()
		_, _ = b.port.Write([]byte("C\r"))
		b.wmu.Unlock()
		err = b.port.Close()
	})
	return err
}

func marshalSLCAN(id uint32, data []byte) string {
	var sb strings.Builder
	if id > 0x7FF {
		fmt.Fprintf(&sb, "T%08X%d", id&0x1FFFFFFF, len(data))
	} else {
		fmt.Fprintf(&sb, "t%03X%d", id, len(data))
	}
	for _, d := range data {
		fmt.Fprintf(&sb, "%02X", d)
	}
	sb.WriteByte('\r')
	return sb.String()
}

func parseSLCAN(line string) (Frame, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Frame{}, fmt.Errorf("slcan: empty line")
	}
	var idLen int
	switch line[0] {
	case 't':
		idLen = 3
	case 'T':
		idLen = 8
	default:
		return Frame{}, fmt.Errorf("slcan: unsupported frame type %q", line[0])
	}
	if len(line) < 1+idLen+1 {
		return Frame{}, fmt.Errorf("slcan: truncated header %q", line)
	}
	id, err := strconv.ParseUint(line[1:1+idLen], 16, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("slcan: bad identifier %q", line)
	}
	dlc := int(line[1+idLen] - '0')
	if dlc < 0 || dlc > 8 {
		return Frame{}, fmt.Errorf("slcan: bad length %q", line)
	}
	hex := line[1+idLen+1:]
	if len(hex) < dlc*2 {
		return Frame{}, fmt.Errorf("slcan: truncated payload %q", line)
	}
	data := make([]byte, dlc)
	for i := 0; i < dlc; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Frame{}, fmt.Errorf("slcan: bad payload %q", line)
		}
		data[i] = byte(v)
	}
	return Frame{ID: uint32(id), Data: data}, nil
}
