package terrain

import (
	"voxelisle/internal/sim/catalogs"
	"voxelisle/internal/sim/noise"
)

// Feature-noise buckets, disjoint and in priority order. The single sample
// per column lands in at most one of them.
const (
	treeBucket       = 0.92
	vegetationBucket = 0.85
	flowerBucket     = 0.80
	herbBucket       = 0.78
)

// plantColumn decides the column's flora from one feature sample, gated by
// height, island mask and biome compatibility. Features write only into
// cells that are still air.
func (g *Generator) plantColumn(ch *Chunk, lx, lz, wx, wz, surface int, mask float64, biome Biome) {
	if surface <= SeaLevel+1 || mask <= 0.25 {
		return
	}
	if surface >= ChunkHeight {
		return
	}

	v := (noise.FBM(g.flora, float64(wx)*floraFreq, float64(wz)*floraFreq, floraOctaves, 2.0, 0.5) + 1) / 2

	switch {
	case v >= treeBucket:
		if supportsTrees(biome) {
			g.plantTree(ch, lx, lz, surface, biome)
		}
	case v >= vegetationBucket:
		if supportsVegetation(biome) {
			setIfAir(ch, lx, surface, lz, catalogs.Tallgrass)
		}
	case v >= flowerBucket:
		if supportsFlowers(biome) {
			setIfAir(ch, lx, surface, lz, catalogs.Flower)
		}
	case v >= herbBucket:
		if supportsHerbs(biome) {
			setIfAir(ch, lx, surface, lz, catalogs.Herb)
		}
	}
}

// plantTree writes a vertical trunk and a spherical leaf canopy. Trees whose
// canopy would cross the chunk boundary are skipped so generation never
// depends on neighbouring chunks.
func (g *Generator) plantTree(ch *Chunk, lx, lz, surface int, biome Biome) {
	trunk := 5
	radius := 2
	if biome == DarkForest {
		trunk = 7
		radius = 3
	}

	if lx-radius < 0 || lx+radius >= ChunkSize || lz-radius < 0 || lz+radius >= ChunkSize {
		return
	}
	topY := surface + trunk - 1
	if topY+radius >= ChunkHeight {
		return
	}

	for y := surface; y <= topY; y++ {
		setIfAir(ch, lx, y, lz, catalogs.Log)
	}

	r2 := radius*radius + 1
	for dy := -radius; dy <= radius; dy++ {
		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx*dx+dy*dy+dz*dz > r2 {
					continue
				}
				setIfAir(ch, lx+dx, topY+dy, lz+dz, catalogs.Leaves)
			}
		}
	}
}

func setIfAir(ch *Chunk, x, y, z int, id byte) {
	if y < 0 || y >= ChunkHeight {
		return
	}
	i := Index(x, y, z)
	if ch.Blocks[i] == catalogs.Air {
		ch.Blocks[i] = id
	}
}
