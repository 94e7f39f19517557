package noise

import "math"

// Field is 2D Perlin noise seeded by an integer. Two Fields built from the
// same seed produce bit-identical samples on every platform: the permutation
// table is shuffled with a plain 64-bit linear congruential generator, never
// with anything hash-map or pointer dependent.
type Field struct {
	perm [512]int
}

// New builds a Field from a seed.
func New(seed int64) *Field {
	f := &Field{}

	var base [256]int
	for i := range base {
		base[i] = i
	}

	// Fisher-Yates driven by an LCG over the seed.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int(uint64(s>>16) % uint64(i+1))
		base[i], base[j] = base[j], base[i]
	}

	for i := 0; i < 256; i++ {
		f.perm[i] = base[i]
		f.perm[i+256] = base[i]
	}
	return f
}

// fade is the smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash int, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}

// Sample evaluates the field at (x, y). The result is roughly in [-1, 1] and
// spatially continuous.
func (f *Field) Sample(x, y float64) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255

	xf := x - math.Floor(x)
	yf := y - math.Floor(y)

	u := fade(xf)
	v := fade(yf)

	aa := f.perm[f.perm[xi]+yi]
	ab := f.perm[f.perm[xi]+yi+1]
	ba := f.perm[f.perm[xi+1]+yi]
	bb := f.perm[f.perm[xi+1]+yi+1]

	x1 := lerp(u, grad(aa, xf, yf), grad(ba, xf-1, yf))
	x2 := lerp(u, grad(ab, xf, yf-1), grad(bb, xf-1, yf-1))
	return lerp(v, x1, x2)
}
