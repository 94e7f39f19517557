package noise

// FBM sums octaves of a Field into one bounded scalar. The accumulated value
// is divided by the summed per-octave amplitudes, so the result stays in the
// same range as a single Sample. Every terrain, climate, cave, ore and flora
// signal goes through this combinator so tuning stays in one place.
func FBM(f *Field, x, y float64, octaves int, lacunarity, gain float64) float64 {
	var total float64
	frequency := 1.0
	amplitude := 1.0
	maxAmplitude := 0.0

	for i := 0; i < octaves; i++ {
		total += f.Sample(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= gain
		frequency *= lacunarity
	}
	if maxAmplitude == 0 {
		return 0
	}
	return total / maxAmplitude
}
