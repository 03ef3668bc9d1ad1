// Package core contains the runtime of the CanDash bridge: the Handler with
// its transmit and receive loops, the websocket Monitor and the Session
// that wires them together from configuration.
package core

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"CanDash/internal/bus"
	"CanDash/internal/codec"
	"CanDash/internal/vehicle"
)

const (
	receiveTimeout = 100 * time.Millisecond
	receivePause   = 10 * time.Millisecond
	errorPause     = time.Second

	// noiseProbability is the per-cycle chance of emitting one decoy
	// frame after the main set.
	noiseProbability = 0.005

	noiseIDBase  = 0x100
	noiseIDRange = 0x100
)

// Handler bridges the vehicle state and the bus. It runs the periodic frame
// transmitter and the receive/dispatch loop, and exposes the command
// operations the CLI or a dashboard invokes.
type Handler struct {
	state    *vehicle.State
	bus      bus.Bus
	log      *slog.Logger
	interval time.Duration
	enabled  bool // false when running on the disabled fallback bus

	rnd  *rand.Rand
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewHandler wires a handler to the given state and bus. enabled marks
// whether the bus is a real channel; the receiver only runs on a real one.
func NewHandler(state *vehicle.State, b bus.Bus, enabled bool, interval time.Duration, log *slog.Logger) *Handler {
	return &Handler{
		state:    state,
		bus:      b,
		log:      log,
		interval: interval,
		enabled:  enabled,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:     make(chan struct{}),
	}
}

// Start launches the transmit loop and, on a real bus, the receive loop.
func (h *Handler) Start() {
	h.wg.Add(1)
	go h.transmitLoop()
	if h.enabled {
		h.wg.Add(1)
		go h.receiveLoop()
	}
}

// Stop signals both loops, waits for them and closes the bus exactly once.
func (h *Handler) Stop() {
	h.state.SetRunning(false)
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
	if err := h.bus.Close(); err != nil {
		h.log.Error("bus close failed", "err", err)
	}
}

// transmitLoop broadcasts the full frame set once per interval until the
// session stops running.
func (h *Handler) transmitLoop() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for h.state.Running() {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.transmitCycle()
		}
	}
}

// transmitCycle encodes the current state snapshot into every outbound
// frame type, in a fixed order, and occasionally appends one noise frame.
// A failed cycle is logged and retried after a pause; it never ends the loop.
func (h *Handler) transmitCycle() {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("transmit cycle failed", "reason", r)
			time.Sleep(errorPause)
		}
	}()

	snap := h.state.Snapshot()
	now := time.Now()
	h.send(codec.IgnitionID, codec.EncodeIgnition(snap.IgnitionOn, now))
	h.send(codec.EngineID, codec.EncodeEngineStatus(snap.EngineRunning, snap.IgnitionOn))
	h.send(codec.SpeedID, codec.EncodeSpeed(snap.Speed))
	h.send(codec.RPMID, codec.EncodeRPM(snap.RPM))
	h.send(codec.SignalID, codec.EncodeSignal(snap.SignalState))
	h.send(codec.BrakeID, codec.EncodeBrake(snap.BrakeActive))
	h.send(codec.GearID, codec.EncodeGear(snap.GearPosition))

	if h.rnd.Float64() < noiseProbability {
		id, data := h.noiseFrame()
		h.send(id, data)
	}
}

// noiseFrame builds a decoy: a random identifier in [0x100, 0x1FF] with 8
// random bytes, making live traffic harder to tell from filler.
func (h *Handler) noiseFrame() (uint32, []byte) {
	id := uint32(noiseIDBase + h.rnd.Intn(noiseIDRange))
	data := make([]byte, 8)
	for i := range data {
		data[i] = byte(h.rnd.Intn(256))
	}
	return id, data
}

// receiveLoop blocks on the bus with a short timeout and dispatches inbound
// frames until the session stops running.
func (h *Handler) receiveLoop() {
	defer h.wg.Done()
	for h.state.Running() {
		select {
		case <-h.stop:
			return
		default:
		}
		f, ok, err := h.bus.Receive(receiveTimeout)
		switch {
		case err == bus.ErrClosed:
			return
		case err != nil:
			h.log.Error("receive failed", "err", err)
		case ok:
			h.handleFrame(f)
		}
		time.Sleep(receivePause)
	}
}

// handleFrame dispatches one inbound frame and, in debug mode, records it
// in the bounded trace.
func (h *Handler) handleFrame(f bus.Frame) {
	h.dispatch(f)
	if h.state.DebugMode() {
		h.state.AppendTrace(f.String())
	}
}

// dispatch decodes a frame by identifier and mutates state accordingly.
// Short frames are dropped without touching state; unknown identifiers are
// ignored.
func (h *Handler) dispatch(f bus.Frame) {
	if len(f.Data) < codec.FrameLen {
		h.log.Warn("dropping short frame", "id", f.ID, "len", len(f.Data))
		return
	}
	switch f.ID {
	case codec.IgnitionID:
		on := codec.DecodeIgnition(f.Data)
		if h.state.IgnitionOn() != on {
			h.log.Info("ignition state change", "on", on)
			h.state.SetIgnition(on)
		}
	case codec.EngineID:
		if h.state.IgnitionOn() {
			h.state.SetEngineRunning(codec.DecodeEngine(f.Data))
		} else {
			h.log.Debug("engine frame ignored while ignition off", "id", f.ID)
		}
	case codec.SpeedID:
		h.state.SetSpeed(codec.DecodeSpeed(f.Data))
	case codec.RPMID:
		h.state.SetRPM(codec.DecodeRPM(f.Data))
	case codec.SignalID:
		if err := h.state.SetSignal(codec.DecodeSignal(f.Data)); err != nil {
			h.log.Warn("rejecting signal frame", "err", err)
		}
	case codec.BrakeID:
		h.state.SetBrake(codec.DecodeBrake(f.Data))
	case codec.GearID:
		if err := h.state.SetGearPosition(codec.DecodeGear(f.Data)); err != nil {
			h.log.Warn("rejecting gear frame", "id", f.ID, "err", err)
		}
	case codec.DoorID:
		h.state.SetDoorState(codec.DecodeDoor(f.Data))
	default:
		// Unknown identifiers (including our own noise) are ignored.
	}
}

// send pushes one frame onto the bus; failures are logged and dropped.
func (h *Handler) send(id uint32, data []byte) {
	if err := h.bus.Send(id, data); err != nil {
		h.log.Error("send failed", "id", id, "err", err)
	}
}

// SetIgnition emits an ignition frame onto the bus. Local state changes
// only when the frame (or any peer's) comes back through the receiver.
func (h *Handler) SetIgnition(on bool) {
	h.send(codec.IgnitionID, codec.EncodeIgnition(on, time.Now()))
}

// SetEngine emits an engine start/stop frame onto the bus. As with
// SetIgnition, local state follows the receive path.
func (h *Handler) SetEngine(on bool) {
	h.send(codec.EngineID, codec.EncodeEngineCommand(on, time.Now()))
}

// SetGearPosition shifts gear, applies the per-gear speed/rpm presets and
// emits the gear frame. Invalid positions are logged and ignored.
func (h *Handler) SetGearPosition(position int) {
	if err := h.state.ShiftGear(position); err != nil {
		h.log.Warn("invalid gear position", "position", position, "err", err)
		return
	}
	h.send(codec.GearID, codec.EncodeGear(position))
}

// SetBrake updates the brake state and emits the brake frame.
func (h *Handler) SetBrake(pressed bool) {
	h.state.SetBrake(pressed)
	h.send(codec.BrakeID, codec.EncodeBrake(pressed))
}

// SetSignal updates the turn signal mask. The state is picked up by the
// next periodic transmit cycle; no immediate frame is sent.
func (h *Handler) SetSignal(mask byte) {
	if err := h.state.SetSignal(mask); err != nil {
		h.log.Warn("invalid signal mask", "mask", mask, "err", err)
	}
}

// SetAcceleration records the driver pedal intent for the next tick.
func (h *Handler) SetAcceleration(a int) {
	if err := h.state.SetAcceleration(a); err != nil {
		h.log.Warn("invalid acceleration", "value", a, "err", err)
	}
}

// ToggleDoor flips the selected door lock bits and emits the door frame.
func (h *Handler) ToggleDoor(mask byte) {
	doors, err := h.state.ToggleDoor(mask)
	if err != nil {
		h.log.Warn("invalid door mask", "mask", mask, "err", err)
		return
	}
	h.send(codec.DoorID, codec.EncodeDoor(doors))
}

// SetSpeed applies the direct speed-set path for the current gear and
// emits the resulting speed and rpm frames with the signed speed value.
func (h *Handler) SetSpeed(target float64) {
	m := h.state.ApplyTarget(target)
	h.sendSpeedAndRPM(m.Speed, m.RPM)
}

// UpdateSpeed advances the kinematic model by one driving tick and emits
// speed and rpm frames. With the engine off the state zeroes and nothing is
// sent.
func (h *Handler) UpdateSpeed() {
	m, ok := h.state.Tick()
	if !ok {
		return
	}
	h.sendSpeedAndRPM(math.Abs(m.Speed), m.RPM)
}

func (h *Handler) sendSpeedAndRPM(speed, rpm float64) {
	h.send(codec.SpeedID, codec.EncodeSpeed(speed))
	h.send(codec.RPMID, codec.EncodeRPM(rpm))
}
