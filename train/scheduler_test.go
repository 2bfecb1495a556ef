package train

import (
	"math"
	"testing"
)

func TestSchedulerWarmup(t *testing.T) {
	s := NewWarmupCosineLR(0.1, 1000)
	if s.WarmupSteps != 300 {
		t.Errorf("expect 300 warmup steps, got %d", s.WarmupSteps)
	}
	if lr := s.LR(0); math.Abs(lr-s.WarmupStartLR) > 1e-12 {
		t.Errorf("step 0: expect %g got %g", s.WarmupStartLR, lr)
	}
	if lr := s.LR(299); math.Abs(lr-0.1) > 1e-9 {
		t.Errorf("end of warmup: expect 0.1 got %g", lr)
	}
	prev := s.LR(0)
	for step := 1; step < 300; step++ {
		lr := s.LR(step)
		if lr <= prev {
			t.Fatalf("warmup not increasing at step %d: %g <= %g", step, lr, prev)
		}
		prev = lr
	}
}

func TestSchedulerCosine(t *testing.T) {
	s := NewWarmupCosineLR(0.1, 1000)
	// halfway through the decay the rate is the midpoint
	mid := s.WarmupSteps + (s.MaxSteps-s.WarmupSteps)/2
	want := s.EtaMin + 0.5*(0.1-s.EtaMin)
	if lr := s.LR(mid); math.Abs(lr-want) > 1e-9 {
		t.Errorf("midpoint: expect %g got %g", want, lr)
	}
	prev := s.LR(s.WarmupSteps)
	for step := s.WarmupSteps + 1; step < s.MaxSteps; step++ {
		lr := s.LR(step)
		if lr > prev {
			t.Fatalf("decay not decreasing at step %d", step)
		}
		prev = lr
	}
	if lr := s.LR(s.MaxSteps); lr != s.EtaMin {
		t.Errorf("after max steps: expect %g got %g", s.EtaMin, lr)
	}
	if lr := s.LR(s.MaxSteps + 500); lr != s.EtaMin {
		t.Errorf("past max steps: expect %g got %g", s.EtaMin, lr)
	}
}

func TestSchedulerTiny(t *testing.T) {
	s := NewWarmupCosineLR(0.05, 3)
	for step := 0; step < 3; step++ {
		lr := s.LR(step)
		if lr < 0 || lr > 0.05 {
			t.Errorf("step %d: lr %g out of range", step, lr)
		}
	}
}
