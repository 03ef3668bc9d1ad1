// Package vehicle holds the shared vehicle state record and the kinematic
// model that advances it. All field access goes through methods that take
// the state lock; Snapshot returns a consistent copy for rendering.
package vehicle

import (
	"errors"
	"sync"

	"CanDash/internal/model"
)

// Gear positions.
const (
	GearPark = iota
	GearNeutral
	GearReverse
	GearDrive
)

// Door lock mask bits.
const (
	Door1Lock = 0x01
	Door2Lock = 0x02
	Door3Lock = 0x04
	Door4Lock = 0x08
)

// TraceCap bounds the debug trace FIFO.
const TraceCap = 10

var (
	ErrInvalidGear   = errors.New("vehicle: gear position out of range")
	ErrInvalidSignal = errors.New("vehicle: signal mask out of range")
	ErrInvalidDoor   = errors.New("vehicle: door mask out of range")
	ErrInvalidAccel  = errors.New("vehicle: acceleration out of range")
)

// State is the single shared vehicle state record. One instance exists per
// running session; the transmitter, receiver, kinematics ticker and command
// callers all read and write it concurrently.
type State struct {
	mu sync.Mutex

	running       bool
	ignitionOn    bool
	engineRunning bool
	currentSpeed  float64 // kph; may go negative in reverse via SetTargetSpeed
	engineRPM     float64
	acceleration  int // pedal intent: -1, 0 or 1
	brakeActive   bool
	gearPosition  int
	doorState     byte // bit i set = door i locked
	signalState   byte // bit0 left, bit1 right
	debugMode     bool
	trace         []string
}

// NewState returns a state record with the session defaults: running, all
// doors locked, everything else off.
func NewState() *State {
	return &State{
		running:   true,
		doorState: Door1Lock | Door2Lock | Door3Lock | Door4Lock,
	}
}

// Running reports the process-wide liveness flag.
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetRunning flips the liveness flag; both bridge loops observe false within
// one iteration.
func (s *State) SetRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// IgnitionOn reports the ignition state.
func (s *State) IgnitionOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ignitionOn
}

// SetIgnition sets the ignition state.
func (s *State) SetIgnition(v bool) {
	s.mu.Lock()
	s.ignitionOn = v
	s.mu.Unlock()
}

// EngineRunning reports whether the engine is running.
func (s *State) EngineRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engineRunning
}

// SetEngineRunning sets the engine-running flag.
func (s *State) SetEngineRunning(v bool) {
	s.mu.Lock()
	s.engineRunning = v
	s.mu.Unlock()
}

// Speed returns the current speed in kph.
func (s *State) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSpeed
}

// SetSpeed overwrites the current speed, as decoded from an inbound frame.
func (s *State) SetSpeed(kph float64) {
	s.mu.Lock()
	s.currentSpeed = kph
	s.mu.Unlock()
}

// RPM returns the current engine speed.
func (s *State) RPM() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engineRPM
}

// SetRPM overwrites the engine speed, as decoded from an inbound frame.
func (s *State) SetRPM(rpm float64) {
	s.mu.Lock()
	s.engineRPM = rpm
	s.mu.Unlock()
}

// SetAcceleration records the driver pedal intent (-1, 0 or 1).
func (s *State) SetAcceleration(a int) error {
	if a < -1 || a > 1 {
		return ErrInvalidAccel
	}
	s.mu.Lock()
	s.acceleration = a
	s.mu.Unlock()
	return nil
}

// BrakeActive reports the brake pedal state.
func (s *State) BrakeActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brakeActive
}

// SetBrake sets the brake pedal state.
func (s *State) SetBrake(v bool) {
	s.mu.Lock()
	s.brakeActive = v
	s.mu.Unlock()
}

// GearPosition returns the current gear.
func (s *State) GearPosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gearPosition
}

// SetGearPosition changes gear. Values outside P/N/R/D are rejected, which
// also covers the offset values produced by the gear frame decode quirk.
func (s *State) SetGearPosition(p int) error {
	if p < GearPark || p > GearDrive {
		return ErrInvalidGear
	}
	s.mu.Lock()
	s.gearPosition = p
	s.mu.Unlock()
	return nil
}

// ShiftGear changes gear and applies the per-gear speed/rpm presets used by
// the gear command (P: stopped, N: idle rev, R: fixed creep, D: rolling).
func (s *State) ShiftGear(p int) error {
	if p < GearPark || p > GearDrive {
		return ErrInvalidGear
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gearPosition = p
	switch p {
	case GearPark:
		s.currentSpeed = 0
		s.engineRPM = 0
	case GearNeutral:
		s.currentSpeed = 0
		s.engineRPM = 1000
	case GearReverse:
		s.currentSpeed = -5
		s.engineRPM = 2000
	case GearDrive:
		s.currentSpeed = 20
		s.engineRPM = 3000
	}
	return nil
}

// DoorState returns the door lock mask.
func (s *State) DoorState() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doorState
}

// SetDoorState overwrites the door lock mask, as decoded from an inbound
// frame. Only the low four bits are kept.
func (s *State) SetDoorState(mask byte) {
	s.mu.Lock()
	s.doorState = mask & 0x0F
	s.mu.Unlock()
}

// ToggleDoor flips the lock bits selected by mask and returns the new door
// state. A mask outside the four door bits is rejected.
func (s *State) ToggleDoor(mask byte) (byte, error) {
	if mask == 0 || mask&^byte(0x0F) != 0 {
		return 0, ErrInvalidDoor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doorState ^= mask
	return s.doorState, nil
}

// SignalState returns the turn signal mask.
func (s *State) SignalState() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signalState
}

// SetSignal sets the turn signal mask. Both bits set is valid (hazard).
func (s *State) SetSignal(mask byte) error {
	if mask > 0x03 {
		return ErrInvalidSignal
	}
	s.mu.Lock()
	s.signalState = mask
	s.mu.Unlock()
	return nil
}

// DebugMode reports whether frame tracing is enabled.
func (s *State) DebugMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugMode
}

// SetDebugMode toggles frame tracing.
func (s *State) SetDebugMode(v bool) {
	s.mu.Lock()
	s.debugMode = v
	s.mu.Unlock()
}

// AppendTrace records a formatted frame entry in the bounded debug trace,
// evicting the oldest entry once the capacity is reached.
func (s *State) AppendTrace(entry string) {
	s.mu.Lock()
	s.trace = append(s.trace, entry)
	if len(s.trace) > TraceCap {
		s.trace = s.trace[len(s.trace)-TraceCap:]
	}
	s.mu.Unlock()
}

// Trace returns a copy of the debug trace, newest last.
func (s *State) Trace() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.trace))
	copy(out, s.trace)
	return out
}

// Snapshot returns a consistent copy of all fields for rendering.
func (s *State) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Snapshot{
		IgnitionOn:    s.ignitionOn,
		EngineRunning: s.engineRunning,
		Speed:         s.currentSpeed,
		RPM:           s.engineRPM,
		Acceleration:  s.acceleration,
		BrakeActive:   s.brakeActive,
		GearPosition:  s.gearPosition,
		Gear:          GearName(s.gearPosition),
		DoorState:     s.doorState,
		SignalState:   s.signalState,
		DebugMode:     s.debugMode,
	}
}

// GearName maps a gear position to its display letter.
func GearName(position int) string {
	switch position {
	case GearPark:
		return "P"
	case GearNeutral:
		return "N"
	case GearReverse:
		return "R"
	case GearDrive:
		return "D"
	default:
		return "Unknown"
	}
}
