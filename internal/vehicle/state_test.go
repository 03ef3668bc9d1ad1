package vehicle

import (
	"fmt"
	"testing"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState()
	if !s.Running() {
		t.Fatalf("new state not running")
	}
	if s.DoorState() != 0x0F {
		t.Fatalf("doors = %04b, want all locked", s.DoorState())
	}
	if s.IgnitionOn() || s.EngineRunning() || s.BrakeActive() || s.DebugMode() {
		t.Fatalf("flags not zeroed")
	}
	if s.GearPosition() != GearPark {
		t.Fatalf("gear = %d, want park", s.GearPosition())
	}
}

func TestSetGearPositionValidation(t *testing.T) {
	s := NewState()
	for _, p := range []int{GearPark, GearNeutral, GearReverse, GearDrive} {
		if err := s.SetGearPosition(p); err != nil {
			t.Errorf("gear %d rejected: %v", p, err)
		}
	}
	for _, p := range []int{-4, -1, 4, 11} {
		if err := s.SetGearPosition(p); err == nil {
			t.Errorf("gear %d accepted", p)
		}
	}
	if s.GearPosition() != GearDrive {
		t.Fatalf("rejected gear mutated state: %d", s.GearPosition())
	}
}

func TestShiftGearPresets(t *testing.T) {
	cases := []struct {
		gear      int
		speed, rpm float64
	}{
		{GearPark, 0, 0},
		{GearNeutral, 0, 1000},
		{GearReverse, -5, 2000},
		{GearDrive, 20, 3000},
	}
	s := NewState()
	for _, tc := range cases {
		if err := s.ShiftGear(tc.gear); err != nil {
			t.Fatalf("shift to %d: %v", tc.gear, err)
		}
		if s.Speed() != tc.speed || s.RPM() != tc.rpm {
			t.Errorf("gear %s: speed=%v rpm=%v, want %v/%v",
				GearName(tc.gear), s.Speed(), s.RPM(), tc.speed, tc.rpm)
		}
	}
	if err := s.ShiftGear(5); err == nil {
		t.Fatalf("invalid shift accepted")
	}
}

func TestSetSignalValidation(t *testing.T) {
	s := NewState()
	for mask := byte(0); mask <= 3; mask++ {
		if err := s.SetSignal(mask); err != nil {
			t.Errorf("mask %02b rejected: %v", mask, err)
		}
	}
	if err := s.SetSignal(4); err == nil {
		t.Fatalf("mask 4 accepted")
	}
}

func TestSetAccelerationValidation(t *testing.T) {
	s := NewState()
	for _, a := range []int{-1, 0, 1} {
		if err := s.SetAcceleration(a); err != nil {
			t.Errorf("acceleration %d rejected: %v", a, err)
		}
	}
	for _, a := range []int{-2, 2} {
		if err := s.SetAcceleration(a); err == nil {
			t.Errorf("acceleration %d accepted", a)
		}
	}
}

func TestToggleDoor(t *testing.T) {
	s := NewState()
	got, err := s.ToggleDoor(Door2Lock)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got != 0x0D {
		t.Fatalf("doors = %04b, want 1101", got)
	}
	got, err = s.ToggleDoor(Door2Lock)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if got != 0x0F {
		t.Fatalf("doors = %04b, want 1111", got)
	}
	if _, err := s.ToggleDoor(0); err == nil {
		t.Fatalf("zero mask accepted")
	}
	if _, err := s.ToggleDoor(0x10); err == nil {
		t.Fatalf("out-of-range mask accepted")
	}
}

func TestSetDoorStateMasksHighBits(t *testing.T) {
	s := NewState()
	s.SetDoorState(0xFA)
	if s.DoorState() != 0x0A {
		t.Fatalf("doors = %04b, want 1010", s.DoorState())
	}
}

func TestTraceBoundedFIFO(t *testing.T) {
	s := NewState()
	for i := 0; i < TraceCap+1; i++ {
		s.AppendTrace(fmt.Sprintf("entry %d", i))
	}
	trace := s.Trace()
	if len(trace) != TraceCap {
		t.Fatalf("trace length = %d, want %d", len(trace), TraceCap)
	}
	if trace[0] != "entry 1" {
		t.Fatalf("oldest entry = %q, want eviction of entry 0", trace[0])
	}
	if trace[TraceCap-1] != fmt.Sprintf("entry %d", TraceCap) {
		t.Fatalf("newest entry = %q", trace[TraceCap-1])
	}
}

func TestSnapshot(t *testing.T) {
	s := NewState()
	s.SetIgnition(true)
	s.SetEngineRunning(true)
	if err := s.SetGearPosition(GearDrive); err != nil {
		t.Fatalf("gear: %v", err)
	}
	s.SetSpeed(42.5)
	s.SetRPM(1650)

	snap := s.Snapshot()
	if !snap.IgnitionOn || !snap.EngineRunning {
		t.Fatalf("snapshot flags = %+v", snap)
	}
	if snap.Gear != "D" || snap.GearPosition != GearDrive {
		t.Fatalf("snapshot gear = %q/%d", snap.Gear, snap.GearPosition)
	}
	if snap.Speed != 42.5 || snap.RPM != 1650 {
		t.Fatalf("snapshot motion = %v/%v", snap.Speed, snap.RPM)
	}
}

func TestGearName(t *testing.T) {
	names := map[int]string{GearPark: "P", GearNeutral: "N", GearReverse: "R", GearDrive: "D", 9: "Unknown"}
	for pos, want := range names {
		if got := GearName(pos); got != want {
			t.Errorf("GearName(%d) = %q, want %q", pos, got, want)
		}
	}
}
