//go:build !linux

package bus

import "errors"

// OpenSocketCAN is only available on Linux; elsewhere the caller falls
// through to the SLCAN or disabled transport.
func OpenSocketCAN(ifname string) (Bus, error) {
	return nil, errors.New("bus: socketcan requires linux")
}
