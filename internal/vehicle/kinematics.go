package vehicle

// Motion bundles the two derived quantities the kinematic model produces.
type Motion struct {
	Speed float64 // kph
	RPM   float64
}

// Kinematic constants, per driving tick.
const (
	accelRate  = 2.0
	coastDecel = 1.0
	brakeDecel = 4.0

	idleRPM         = 800
	maxNeutralRPM   = 3000
	maxDriveRPM     = 8000
	minReverseRPM   = 1200
	maxDriveSpeed   = 255
	maxReverseSpeed = 30
)

// Advance computes the next speed/rpm from gear, pedal intent and brake
// state. It is a pure function of its inputs.
//
// With the engine off everything is zero. Park idles. Neutral revs toward
// 3000 while accelerating and decays toward idle otherwise. Reverse and
// Drive accelerate, brake or coast within their speed caps, with rpm
// following speed.
func Advance(gear, acceleration int, brake, engineRunning bool, cur Motion) Motion {
	if !engineRunning {
		return Motion{}
	}

	next := cur
	switch gear {
	case GearPark:
		next.Speed = 0
		next.RPM = idleRPM

	case GearNeutral:
		next.Speed = 0
		if acceleration > 0 {
			next.RPM = min(maxNeutralRPM, cur.RPM+float64(acceleration)*200)
		} else {
			next.RPM = max(idleRPM, cur.RPM-100)
		}

	case GearReverse:
		if acceleration > 0 {
			next.Speed = min(maxReverseSpeed, cur.Speed+float64(acceleration)*accelRate)
		} else if brake {
			next.Speed = max(0, cur.Speed-brakeDecel)
		} else {
			next.Speed = max(0, cur.Speed-coastDecel)
		}
		next.RPM = max(minReverseRPM, idleRPM+next.Speed*20)

	case GearDrive:
		if acceleration > 0 {
			next.Speed = min(maxDriveSpeed, cur.Speed+accelRate)
		} else if brake {
			next.Speed = max(0, cur.Speed-brakeDecel)
		} else {
			next.Speed = max(0, cur.Speed-coastDecel)
		}
		next.RPM = min(maxDriveRPM, idleRPM+next.Speed*20)
	}
	return next
}

// TargetMotion maps a direct speed request to gear-dependent speed/rpm.
// This is a separate model from Advance, with its own rpm formula
// (800 + speed*25) and fixed reverse constants; the two are intentionally
// not reconciled.
func TargetMotion(gear int, target float64) Motion {
	switch gear {
	case GearNeutral:
		return Motion{Speed: 0, RPM: idleRPM}
	case GearReverse:
		return Motion{Speed: -5, RPM: 1500}
	case GearDrive:
		return Motion{Speed: target, RPM: min(maxDriveRPM, max(idleRPM, idleRPM+target*25))}
	default: // Park: the vehicle does not move
		return Motion{}
	}
}

// Tick advances the state through one driving tick using Advance and stores
// the result. The returned flag is false when the engine is off, in which
// case speed and rpm are zeroed and no frames should be sent.
func (s *State) Tick() (Motion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engineRunning {
		s.currentSpeed = 0
		s.engineRPM = 0
		return Motion{}, false
	}
	m := Advance(s.gearPosition, s.acceleration, s.brakeActive, true,
		Motion{Speed: s.currentSpeed, RPM: s.engineRPM})
	s.currentSpeed = m.Speed
	s.engineRPM = m.RPM
	return m, true
}

// ApplyTarget applies the direct speed-set path for the current gear and
// stores the result.
func (s *State) ApplyTarget(target float64) Motion {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := TargetMotion(s.gearPosition, target)
	s.currentSpeed = m.Speed
	s.engineRPM = m.RPM
	return m
}
