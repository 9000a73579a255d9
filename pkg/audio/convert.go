package audio

// Int16ToFloat32 converts signed 16-bit PCM to normalised float32 samples in
// [-1, 1), the format whisper.cpp inference expects. A new slice is always
// returned; the input is never aliased.
func Int16ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// Float32ToInt16 converts normalised float32 samples back to signed 16-bit
// PCM, clamping out-of-range values. Used by tests and by capture paths whose
// device delivers float samples.
func Float32ToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := s * 32768.0
		switch {
		case v > 32767:
			out[i] = 32767
		case v < -32768:
			out[i] = -32768
		default:
			out[i] = int16(v)
		}
	}
	return out
}
