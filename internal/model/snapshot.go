package model

// Snapshot is a consistent read-only copy of the vehicle state, taken under
// the state lock. It is what the monitor feed and any rendering layer see.
type Snapshot struct {
	IgnitionOn    bool    `json:"ignition_on"`
	EngineRunning bool    `json:"engine_running"`
	Speed         float64 `json:"speed_kph"`
	RPM           float64 `json:"engine_rpm"`
	Acceleration  int     `json:"acceleration"`
	BrakeActive   bool    `json:"brake_active"`
	GearPosition  int     `json:"gear_position"`
	Gear          string  `json:"gear"`
	DoorState     byte    `json:"door_state"`
	SignalState   byte    `json:"signal_state"`
	DebugMode     bool    `json:"debug_mode"`
}
