package soap

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
)

func TestTimeToCrossOneUnitUniform(t *testing.T) {
	g := NewWithT(t)

	g.Expect(TimeToCrossOneUnit(2, 0)).To(BeNumerically("~", 0.5, 1e-12))
	g.Expect(TimeToCrossOneUnit(-4, 0)).To(BeNumerically("~", 0.25, 1e-12))
	g.Expect(math.IsInf(TimeToCrossOneUnit(0, 0), 1)).To(BeTrue())
	g.Expect(math.IsInf(TimeToCrossOneUnit(1e-9, 1e-9), 1)).To(BeTrue())
}

func TestTimeToCrossOneUnitFromRest(t *testing.T) {
	for _, a := range []float64{0.5, 1, 2, 8} {
		got := TimeToCrossOneUnit(0, -a)
		want := math.Sqrt(2 / a)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("a=%g: expected %f, got %f", a, want, got)
		}
	}
}

func TestTimeToCrossOneUnitRoots(t *testing.T) {
	tests := []struct {
		name string
		v, a float64
		want float64
	}{
		{"decelerating right", 3, -1, 3 + math.Sqrt(11)},
		{"decelerating left", -3, 1, 3 + math.Sqrt(7)},
		{"accelerating left", -1, -1, math.Sqrt(3) - 1},
		{"slow beta", 5, -0.1, (5 + math.Sqrt(25.2)) / 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeToCrossOneUnit(tt.v, tt.a)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestTimeToCrossOneUnitUnreachable(t *testing.T) {
	tests := []struct {
		name string
		v, a float64
	}{
		{"negative discriminant", 1, 1},
		{"rest with positive acceleration", 0, 2},
		{"no positive root", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeToCrossOneUnit(tt.v, tt.a); !math.IsInf(got, 1) {
				t.Errorf("expected +Inf, got %f", got)
			}
		})
	}
}

func TestParticleAdvance(t *testing.T) {
	g := NewWithT(t)

	p := newParticle(2, 3, -1)
	p.Advance(2)

	g.Expect(p.Pos).To(BeNumerically("~", 2+6-2, 1e-12))
	g.Expect(p.Vel).To(BeNumerically("~", 1, 1e-12))
	g.Expect(p.Slot).To(Equal(2), "advancing must not move the occupied slot")
}

func TestParticleReflect(t *testing.T) {
	tests := []struct {
		name    string
		pos     float64
		wantPos float64
		bounce  bool
	}{
		{"inside", 2.4, 2.4, false},
		{"on lower wall", 0, 0, false},
		{"on upper wall", 4, 4, false},
		{"past upper wall", 5.3, 4, true},
		{"past lower wall", -0.7, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{Pos: tt.pos, Vel: 2, Acc: -0.5}
			bounced := p.Reflect(4)

			if bounced != tt.bounce {
				t.Fatalf("expected bounce=%v, got %v", tt.bounce, bounced)
			}
			if p.Pos != tt.wantPos {
				t.Errorf("expected pos %f, got %f", tt.wantPos, p.Pos)
			}
			if tt.bounce && (p.Vel != -2 || p.Acc != 0.5) {
				t.Errorf("expected flipped vel/acc, got %f/%f", p.Vel, p.Acc)
			}
			if !tt.bounce && (p.Vel != 2 || p.Acc != -0.5) {
				t.Errorf("unexpected change to vel/acc: %f/%f", p.Vel, p.Acc)
			}
		})
	}
}

func TestParticleCrossed(t *testing.T) {
	tests := []struct {
		name string
		slot int
		pos  float64
		want int
		ok   bool
	}{
		{"same slot", 3, 3.4, 0, false},
		{"next slot", 3, 3.6, 4, true},
		{"half rounds to even down", 2, 2.5, 0, false},
		{"half rounds to even up", 3, 3.5, 4, true},
		{"jump two slots", 1, 3.2, 3, true},
		{"out of range", 4, 5.2, 0, false},
		{"nan", 1, math.NaN(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{Slot: tt.slot, Pos: tt.pos}
			got, ok := p.Crossed(5)
			if ok != tt.ok || got != tt.want {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}
