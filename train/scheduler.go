package train

import "math"

// default share of the total steps spent warming up
const WarmupShare = 0.3

// WarmupCosineLR computes the learning rate for a given step: a linear
// ramp from WarmupStartLR to BaseLR over the first WarmupSteps, then a half
// cosine decay down to EtaMin at MaxSteps. Closed form, no state.
type WarmupCosineLR struct {
	WarmupSteps   int
	MaxSteps      int
	BaseLR        float64
	WarmupStartLR float64
	EtaMin        float64
}

// NewWarmupCosineLR builds a schedule over maxSteps steps with the default
// warmup share and floor values.
func NewWarmupCosineLR(baseLR float64, maxSteps int) WarmupCosineLR {
	return WarmupCosineLR{
		WarmupSteps:   int(WarmupShare * float64(maxSteps)),
		MaxSteps:      maxSteps,
		BaseLR:        baseLR,
		WarmupStartLR: 1e-8,
		EtaMin:        1e-8,
	}
}

// LR returns the learning rate for step, counted from 0.
func (s WarmupCosineLR) LR(step int) float64 {
	if step < s.WarmupSteps {
		if s.WarmupSteps <= 1 {
			return s.BaseLR
		}
		return s.WarmupStartLR + float64(step)/float64(s.WarmupSteps-1)*(s.BaseLR-s.WarmupStartLR)
	}
	if step >= s.MaxSteps {
		return s.EtaMin
	}
	progress := float64(step-s.WarmupSteps) / float64(s.MaxSteps-s.WarmupSteps)
	return s.EtaMin + 0.5*(s.BaseLR-s.EtaMin)*(1+math.Cos(math.Pi*progress))
}
