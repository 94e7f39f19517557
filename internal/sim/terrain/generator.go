package terrain

import (
	"voxelisle/internal/sim/noise"
)

// Noise tuning. Frequencies are cycles per block; thresholds are in the
// fbm output range of roughly [-1,1] unless noted.
const (
	islandFreq      = 0.0008
	islandOctaves   = 3
	islandThreshold = 0.15 // on the rescaled [0,1] mask

	baseHeightFreq    = 0.004
	baseHeightOctaves = 6
	detailFreq        = 0.02
	detailOctaves     = 3
	detailWeight      = 0.25

	climateFreq    = 0.0015
	climateOctaves = 3

	caveFreq      = 0.05
	caveYFreq     = 0.1
	caveOctaves   = 3
	caveThreshold = 0.4
	cavePhase     = 1000.0

	oreFreq               = 0.08
	oreOctaves            = 2
	orePrimaryThreshold   = 0.65
	oreSecondaryThreshold = 0.55

	floraFreq    = 0.9
	floraOctaves = 2
)

// Sub-seed offsets. Each signal gets its own field so the fields are
// correlated through the seed but distinguishable.
const (
	seedOffsetDetail      = 100
	seedOffsetTemperature = 1
	seedOffsetMoisture    = 2
	seedOffsetCave        = 3
	seedOffsetFlora       = 4
	seedOffsetOre         = 6
)

// Generator synthesizes chunks from a world seed. It carries only immutable
// noise fields, so Generate is a pure function of (seed, cx, cz) and
// independent coordinates may generate in parallel.
type Generator struct {
	seed int64

	height      *noise.Field
	detail      *noise.Field
	temperature *noise.Field
	moisture    *noise.Field
	cave        *noise.Field
	ore         *noise.Field
	flora       *noise.Field
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:        seed,
		height:      noise.New(seed),
		detail:      noise.New(seed + seedOffsetDetail),
		temperature: noise.New(seed + seedOffsetTemperature),
		moisture:    noise.New(seed + seedOffsetMoisture),
		cave:        noise.New(seed + seedOffsetCave),
		ore:         noise.New(seed + seedOffsetOre),
		flora:       noise.New(seed + seedOffsetFlora),
	}
}

func (g *Generator) Seed() int64 { return g.seed }

// IslandMask bounds land to a finite disk: low-frequency fbm rescaled to
// [0,1], times the radial falloff max(0, 1-(d/WorldRadius)^2). Columns whose
// mask falls under islandThreshold are open ocean.
func (g *Generator) IslandMask(wx, wz float64) float64 {
	d2 := (wx*wx + wz*wz) / (WorldRadius * WorldRadius)
	falloff := 1 - d2
	if falloff <= 0 {
		return 0
	}

	v := noise.FBM(g.height, wx*islandFreq, wz*islandFreq, islandOctaves, 2.0, 0.5)
	v = (v + 1) / 2
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return v * falloff
}

// Climate returns temperature and moisture in [0,1] for a column.
func (g *Generator) Climate(wx, wz float64) (temperature, moisture float64) {
	temperature = clamp01((noise.FBM(g.temperature, wx*climateFreq, wz*climateFreq, climateOctaves, 2.0, 0.5) + 1) / 2)
	moisture = clamp01((noise.FBM(g.moisture, wx*climateFreq, wz*climateFreq, climateOctaves, 2.0, 0.5) + 1) / 2)
	return
}

// SurfaceHeight returns the first-air y for the column before cave carving
// and flora, i.e. the terrain surface. Exposed for spawn placement and the
// streamer's collaborators.
func (g *Generator) SurfaceHeight(wx, wz int) int {
	fx, fz := float64(wx), float64(wz)
	m := g.IslandMask(fx, fz)
	if m < islandThreshold {
		// Shallow ocean floor rises a little toward the island core.
		return TerrainMinHeight + int(m*30)
	}

	base := noise.FBM(g.height, fx*baseHeightFreq, fz*baseHeightFreq, baseHeightOctaves, 2.0, 0.5)
	det := noise.FBM(g.detail, fx*detailFreq, fz*detailFreq, detailOctaves, 2.0, 0.5)

	h := clamp01((base + det*detailWeight + 1 + detailWeight) / (2 + 2*detailWeight))
	scaled := float64(TerrainMinHeight) + h*m*float64(TerrainMaxHeight-TerrainMinHeight)

	height := int(scaled)
	if min := SeaLevel - 5; height < min {
		height = min
	}
	return height
}

// BiomeAt classifies the column at (wx, wz).
func (g *Generator) BiomeAt(wx, wz int) Biome {
	t, m := g.Climate(float64(wx), float64(wz))
	return Classify(t, m, g.SurfaceHeight(wx, wz))
}

// Generate produces the chunk at (cx, cz). Identical (seed, cx, cz) always
// yields byte-identical output.
func (g *Generator) Generate(cx, cz int) *Chunk {
	ch := &Chunk{
		CX:     cx,
		CZ:     cz,
		Blocks: make([]byte, ChunkVolume),
	}
	for lz := 0; lz < ChunkSize; lz++ {
		for lx := 0; lx < ChunkSize; lx++ {
			g.synthesizeColumn(ch, lx, lz)
		}
	}
	return ch
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
