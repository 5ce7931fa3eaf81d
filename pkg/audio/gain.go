package audio

import "math"

const (
	// MinGain is the gain floor in decibels; the floor itself is silence.
	MinGain = -80.0

	// MaxGain is the gain ceiling in decibels, 20*log10(2) for a volume of 2.0.
	MaxGain = 6.020599913279624
)

// VolumeToGain converts a linear volume to decibels, clamped to the line
// gain range. A volume of zero maps to MinGain.
func VolumeToGain(volume float64) float64 {
	if volume <= 0 {
		return MinGain
	}
	return ClampGain(20 * math.Log10(volume))
}

// ClampGain limits db to [MinGain, MaxGain].
func ClampGain(db float64) float64 {
	if math.IsNaN(db) || db < MinGain {
		return MinGain
	}
	if db > MaxGain {
		return MaxGain
	}
	return db
}

// GainToLinear converts decibels to a linear multiplier. Anything at or
// below MinGain is muted.
func GainToLinear(db float64) float64 {
	if db <= MinGain {
		return 0
	}
	return math.Pow(10, ClampGain(db)/20)
}
