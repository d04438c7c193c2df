package soap

import "math"

const epsilon = 1e-8

// TimeToCrossOneUnit returns the smallest positive root of
// 0.5*a*t^2 + v*t + 1 = 0, the step used to advance a particle by one slot.
// The unit distance is fixed; callers pick the sign of a to oppose v.
// It returns +Inf when no positive root exists.
func TimeToCrossOneUnit(v, a float64) float64 {
	if math.Abs(a) < epsilon {
		if math.Abs(v) > epsilon {
			return 1 / math.Abs(v)
		}
		return math.Inf(1)
	}

	d := v*v + 2*a*(-1)
	if d < 0 {
		return math.Inf(1)
	}

	sq := math.Sqrt(d)
	t1 := (-v + sq) / a
	t2 := (-v - sq) / a
	if t1 > 0 {
		return t1
	}
	if t2 > 0 {
		return t2
	}
	return math.Inf(1)
}

// Particle is one end of an interaction. Pos is the continuous kinematic
// position; Slot is the array index the particle last swapped into.
type Particle struct {
	Slot int
	Pos  float64
	Vel  float64
	Acc  float64
}

func newParticle(slot int, vel, acc float64) Particle {
	return Particle{Slot: slot, Pos: float64(slot), Vel: vel, Acc: acc}
}

// Advance moves the particle under constant acceleration for dt.
func (p *Particle) Advance(dt float64) {
	p.Pos += p.Vel*dt + 0.5*p.Acc*dt*dt
	p.Vel += p.Acc * dt
}

// Reflect bounces the particle off the walls at 0 and hi, reversing both
// velocity and acceleration. It reports whether a bounce happened.
func (p *Particle) Reflect(hi float64) bool {
	if !(p.Pos < 0 || p.Pos > hi) {
		return false
	}
	p.Vel = -p.Vel
	p.Acc = -p.Acc
	p.Pos = math.Min(math.Max(p.Pos, 0), hi)
	return true
}

// Crossed returns the slot the particle now rounds to when that differs
// from its occupied slot and lies in [0, n). Ties round to even.
func (p *Particle) Crossed(n int) (int, bool) {
	r := math.RoundToEven(p.Pos)
	if math.IsNaN(r) || r < 0 || r >= float64(n) {
		return 0, false
	}
	slot := int(r)
	if slot == p.Slot {
		return 0, false
	}
	return slot, true
}

func (p *Particle) moving(threshold float64) bool {
	return math.Abs(p.Vel) > threshold
}
