// Package codec implements the bit-level encoding and decoding of vehicle
// state into CAN frame payloads. Layouts follow the DBC the dashboard
// simulator was built against; all payloads are 8 bytes unless noted.
package codec

import (
	"math"
	"time"
)

// Message identifiers.
const (
	IgnitionID = 0x130 // BO_ 304 TerminalStatus
	EngineID   = 0x1D0 // BO_ 464 EngineData
	SpeedID    = 0x1A0 // BO_ 416 Speed
	RPMID      = 0x0AA // BO_ 170 AccPedal
	SignalID   = 0x1F6 // BO_ 502 TurnSignals
	BrakeID    = 0x0A8 // BO_ 168 EngineAndBrake
	GearID     = 0x1D2 // BO_ 466 TransmissionDataDisplay
	DoorID     = 0x24B
)

// Scale factors.
const (
	speedScale = 0.103 // kph per raw count, 12-bit field
	rpmScale   = 0.25  // rpm per raw count, 16-bit field
)

// engineTemp is the fixed temperature constant carried in byte0 of the
// engine status frame.
const engineTemp = 0x30

// FrameLen is the payload length expected by the receiver for all inbound
// frames.
const FrameLen = 8

// Signal state mask bits.
const (
	SignalLeft  = 0x01
	SignalRight = 0x02
)

// Checksum returns the low-nibble sum-of-bytes checksum over a payload.
func Checksum(data []byte) byte {
	var sum int
	for _, b := range data {
		sum += int(b)
	}
	return byte(sum & 0x0F)
}

// Counter derives the freshness nibble from wall-clock time: a monotonic
// low-resolution tick, not a true rolling counter. Collisions across senders
// are possible and acceptable.
func Counter(now time.Time) byte {
	return byte((now.UnixNano() / 1e7) & 0x0F)
}

// EncodeIgnition builds the terminal status payload. Byte2 bit7 marks
// ignition on, bit6 marks ignition off. Byte4 carries the counter nibble in
// the low half and the payload checksum (computed with the counter already
// in place) in the high half.
func EncodeIgnition(on bool, now time.Time) []byte {
	data := make([]byte, FrameLen)
	if on {
		data[2] |= 0x80
	} else {
		data[2] |= 0x40
	}
	data[4] = Counter(now) & 0x0F
	data[4] |= Checksum(data) << 4
	return data
}

// DecodeIgnition reads the ignition state from a terminal status payload.
// Only the ignition-off bit is authoritative: bit6 set means off, bit6 clear
// means on. Bit7 is ignored, mirroring the encode side's write path.
func DecodeIgnition(data []byte) bool {
	return data[2]&0x40 == 0
}

// EncodeEngineStatus builds the engine data payload broadcast by the
// periodic transmitter. Bits 4-5 of byte2 hold 2 when the engine runs, 1
// when the ignition is on but the engine is not, 0 otherwise.
func EncodeEngineStatus(running, ignitionOn bool) []byte {
	data := make([]byte, FrameLen)
	data[0] = engineTemp
	if running {
		data[2] |= 2 << 4
	} else if ignitionOn {
		data[2] |= 1 << 4
	}
	return data
}

// EncodeEngineCommand builds the engine data payload emitted by the engine
// start/stop command. Unlike the periodic variant it carries the counter
// nibble in byte4.
func EncodeEngineCommand(on bool, now time.Time) []byte {
	data := make([]byte, FrameLen)
	data[0] = engineTemp
	if on {
		data[2] |= 2 << 4
	}
	data[4] = Counter(now) & 0x0F
	return data
}

// DecodeEngine reads the engine-running pair of bits at bit offset 20 of an
// engine data payload. Only the value 2 means running.
func DecodeEngine(data []byte) bool {
	return (data[20/8]>>(20%8))&0x03 == 2
}

// EncodeSpeed packs a speed in kph as a 12-bit raw value split across
// byte0 (top 8 bits) and the high nibble of byte1.
func EncodeSpeed(kph float64) []byte {
	data := make([]byte, FrameLen)
	raw := uint16(int16(math.Round(kph/speedScale))) & 0xFFF
	data[0] = byte(raw >> 4)
	data[1] = byte(raw&0x0F) << 4
	return data
}

// DecodeSpeed unpacks the 12-bit speed field.
func DecodeSpeed(data []byte) float64 {
	raw := (uint16(data[0])<<4 | uint16(data[1])>>4) & 0xFFF
	return float64(raw) * speedScale
}

// EncodeRPM packs an engine speed as a 16-bit raw value in bytes 4-5.
func EncodeRPM(rpm float64) []byte {
	data := make([]byte, FrameLen)
	raw := uint16(math.Round(rpm / rpmScale))
	data[4] = byte(raw >> 8)
	data[5] = byte(raw)
	return data
}

// DecodeRPM unpacks the 16-bit engine speed field.
func DecodeRPM(data []byte) float64 {
	raw := uint16(data[4])<<8 | uint16(data[5])
	return float64(raw) * rpmScale
}

// EncodeSignal builds the two-byte turn signal payload from the 2-bit state
// mask. Byte0 carries the left/right indicator bits, byte1 bit0 flags any
// active signal.
func EncodeSignal(mask byte) []byte {
	data := make([]byte, 2)
	if mask&SignalLeft != 0 {
		data[0] |= 0x10
	}
	if mask&SignalRight != 0 {
		data[0] |= 0x20
	}
	if mask != 0 {
		data[1] |= 0x01
	}
	return data
}

// DecodeSignal reads the turn signal payload back into the 2-bit state
// mask. When the active flag in byte1 is clear the state is 0 regardless of
// the indicator bits.
func DecodeSignal(data []byte) byte {
	if data[1]&0x01 == 0 {
		return 0
	}
	var mask byte
	if data[0]&0x10 != 0 {
		mask |= SignalLeft
	}
	if data[0]&0x20 != 0 {
		mask |= SignalRight
	}
	return mask
}

// EncodeBrake builds the brake payload; byte7 bit1 marks the pedal pressed.
func EncodeBrake(pressed bool) []byte {
	data := make([]byte, FrameLen)
	if pressed {
		data[7] |= 0x02
	}
	return data
}

// DecodeBrake reads the brake pedal bit.
func DecodeBrake(data []byte) bool {
	return data[7]&0x02 != 0
}

// EncodeGear writes the gear position directly into byte1.
func EncodeGear(position int) []byte {
	data := make([]byte, FrameLen)
	data[1] = byte(position)
	return data
}

// DecodeGear reads the gear field as (byte1 & 0xF) - 4. Note this is NOT the
// inverse of EncodeGear: a frame produced by EncodeGear(g) decodes to g-4.
// The offset is kept as-is; receivers rely on range validation to reject the
// resulting out-of-range values.
func DecodeGear(data []byte) int {
	return int(data[1]&0x0F) - 4
}

// EncodeDoor writes the 4-bit door lock mask into byte0.
func EncodeDoor(mask byte) []byte {
	data := make([]byte, FrameLen)
	data[0] = mask
	return data
}

// DecodeDoor reads the door lock mask from byte0.
func DecodeDoor(data []byte) byte {
	return data[0]
}
