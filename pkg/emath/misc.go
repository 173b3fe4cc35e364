package emath

// Some functions that only operate on basic types, that are useful

// Clamp restricts f to [min, max]. NaN comes back as min.
func Clamp(f, min, max float64) float64 {
	if f > max {
		return max
	}
	if f >= min {
		return f
	}
	return min
}

// Clamp01 is Clamp(f, 0, 1)
func Clamp01(f float64) float64 { return Clamp(f, 0, 1) }
