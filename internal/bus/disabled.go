package bus

import "time"

// Disabled is the no-op bus used when neither socketcan nor SLCAN could be
// opened. Sends vanish and receives only ever time out, so the bridge keeps
// running with state driven purely by direct commands and the kinematics
// ticker.
type Disabled struct{}

// NewDisabled returns the disabled bus.
func NewDisabled() *Disabled { return &Disabled{} }

// Send discards the frame.
func (*Disabled) Send(id uint32, data []byte) error { return nil }

// Receive sleeps out the timeout and reports no frame.
func (*Disabled) Receive(timeout time.Duration) (Frame, bool, error) {
	time.Sleep(timeout)
	return Frame{}, false, nil
}

// Close is a no-op.
func (*Disabled) Close() error { return nil }
