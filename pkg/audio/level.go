package audio

import "math"

// SilenceFloorDBFS is the level reported for an empty or all-zero frame.
const SilenceFloorDBFS = -120.0

// RMS returns the root-mean-square energy of a 16-bit PCM buffer, expressed
// in the same units as the sample values (0–32767). Returns 0 for an empty
// buffer.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// RMSDBFS returns the RMS level of a 16-bit PCM buffer in decibels relative
// to full scale. The result is clamped to [SilenceFloorDBFS, 0].
func RMSDBFS(samples []int16) float64 {
	rms := RMS(samples) / 32768.0
	if rms <= 0 {
		return SilenceFloorDBFS
	}
	db := 20 * math.Log10(rms)
	if db < SilenceFloorDBFS {
		return SilenceFloorDBFS
	}
	if db > 0 {
		return 0
	}
	return db
}
