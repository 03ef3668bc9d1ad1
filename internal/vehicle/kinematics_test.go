package vehicle

import "testing"

func TestAdvanceEngineOff(t *testing.T) {
	got := Advance(GearDrive, 1, false, false, Motion{Speed: 120, RPM: 3000})
	if got != (Motion{}) {
		t.Fatalf("engine off: %+v, want zero motion", got)
	}
}

func TestAdvancePark(t *testing.T) {
	got := Advance(GearPark, 1, true, true, Motion{Speed: 50, RPM: 5000})
	if got.Speed != 0 || got.RPM != 800 {
		t.Fatalf("park: %+v, want 0 kph at idle", got)
	}
}

func TestAdvanceNeutral(t *testing.T) {
	cases := []struct {
		name   string
		accel  int
		cur    Motion
		want   Motion
	}{
		{"revving", 1, Motion{RPM: 800}, Motion{RPM: 1000}},
		{"rev ceiling", 1, Motion{RPM: 2950}, Motion{RPM: 3000}},
		{"decay", 0, Motion{RPM: 2000}, Motion{RPM: 1900}},
		{"decay floor", 0, Motion{RPM: 850}, Motion{RPM: 800}},
	}
	for _, tc := range cases {
		got := Advance(GearNeutral, tc.accel, false, true, tc.cur)
		if got != tc.want {
			t.Errorf("%s: %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestAdvanceDrive(t *testing.T) {
	// One accelerating tick adds exactly 2.0 kph; rpm follows the updated
	// speed.
	got := Advance(GearDrive, 1, false, true, Motion{Speed: 10, RPM: 1000})
	if got.Speed != 12 {
		t.Fatalf("speed = %v, want 12", got.Speed)
	}
	if got.RPM != 800+12*20 {
		t.Fatalf("rpm = %v, want %v", got.RPM, 800+12*20)
	}

	capped := Advance(GearDrive, 1, false, true, Motion{Speed: 254})
	if capped.Speed != 255 {
		t.Fatalf("capped speed = %v, want 255", capped.Speed)
	}

	braking := Advance(GearDrive, 0, true, true, Motion{Speed: 10})
	if braking.Speed != 6 {
		t.Fatalf("braking speed = %v, want 6", braking.Speed)
	}

	coasting := Advance(GearDrive, 0, false, true, Motion{Speed: 0.5})
	if coasting.Speed != 0 {
		t.Fatalf("coasting floor = %v, want 0", coasting.Speed)
	}

	redline := Advance(GearDrive, 1, false, true, Motion{Speed: 252})
	if redline.RPM != 800+254*20 {
		t.Fatalf("rpm = %v, want %v", redline.RPM, 800+254*20)
	}
	ceiling := Advance(GearDrive, 0, false, true, Motion{Speed: 400})
	if ceiling.RPM != 8000 {
		t.Fatalf("rpm ceiling = %v, want 8000", ceiling.RPM)
	}
}

func TestAdvanceReverse(t *testing.T) {
	accel := Advance(GearReverse, 1, false, true, Motion{Speed: 29})
	if accel.Speed != 30 {
		t.Fatalf("reverse cap = %v, want 30", accel.Speed)
	}
	if accel.RPM != 800+30*20 {
		t.Fatalf("reverse rpm = %v, want %v", accel.RPM, 800+30*20)
	}

	coast := Advance(GearReverse, 0, false, true, Motion{Speed: 5})
	if coast.Speed != 4 {
		t.Fatalf("coast speed = %v, want 4", coast.Speed)
	}
	if coast.RPM != 1200 {
		t.Fatalf("rpm floor = %v, want 1200", coast.RPM)
	}

	brake := Advance(GearReverse, 0, true, true, Motion{Speed: 10})
	if brake.Speed != 6 {
		t.Fatalf("brake speed = %v, want 6", brake.Speed)
	}
}

func TestTargetMotion(t *testing.T) {
	cases := []struct {
		name   string
		gear   int
		target float64
		want   Motion
	}{
		{"park stays put", GearPark, 80, Motion{}},
		{"neutral idles", GearNeutral, 80, Motion{Speed: 0, RPM: 800}},
		{"reverse constants", GearReverse, 80, Motion{Speed: -5, RPM: 1500}},
		{"drive", GearDrive, 100, Motion{Speed: 100, RPM: 3300}},
		{"drive rpm ceiling", GearDrive, 400, Motion{Speed: 400, RPM: 8000}},
		{"drive rpm floor", GearDrive, -10, Motion{Speed: -10, RPM: 800}},
	}
	for _, tc := range cases {
		if got := TargetMotion(tc.gear, tc.target); got != tc.want {
			t.Errorf("%s: %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestTickEngineOffZeroes(t *testing.T) {
	s := NewState()
	s.SetSpeed(60)
	s.SetRPM(2500)
	m, sent := s.Tick()
	if sent {
		t.Fatalf("tick with engine off wants no frames")
	}
	if m != (Motion{}) || s.Speed() != 0 || s.RPM() != 0 {
		t.Fatalf("tick with engine off: motion %+v, state %v/%v", m, s.Speed(), s.RPM())
	}
}

func TestTickDrive(t *testing.T) {
	s := NewState()
	s.SetEngineRunning(true)
	if err := s.SetGearPosition(GearDrive); err != nil {
		t.Fatalf("gear: %v", err)
	}
	if err := s.SetAcceleration(1); err != nil {
		t.Fatalf("accel: %v", err)
	}
	m, sent := s.Tick()
	if !sent {
		t.Fatalf("tick with engine running should report frames to send")
	}
	if m.Speed != 2 || m.RPM != 840 {
		t.Fatalf("first tick = %+v, want 2 kph / 840 rpm", m)
	}
	if s.Speed() != 2 || s.RPM() != 840 {
		t.Fatalf("state not updated: %v/%v", s.Speed(), s.RPM())
	}
}

func TestApplyTarget(t *testing.T) {
	s := NewState()
	if err := s.SetGearPosition(GearReverse); err != nil {
		t.Fatalf("gear: %v", err)
	}
	m := s.ApplyTarget(50)
	if m.Speed != -5 || m.RPM != 1500 {
		t.Fatalf("reverse target = %+v, want -5/1500", m)
	}
	if s.Speed() != -5 {
		t.Fatalf("state speed = %v, want -5", s.Speed())
	}
}
