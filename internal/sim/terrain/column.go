package terrain

import (
	"voxelisle/internal/sim/catalogs"
	"voxelisle/internal/sim/noise"
)

// synthesizeColumn fills one (lx, lz) vertical stack of ch, bottom-up:
// fixed floor, deep stone with ore, sub-surface filler, surface block,
// water to sea level, then air. Caves are carved out of the solid band and
// flora is planted last, into air only.
func (g *Generator) synthesizeColumn(ch *Chunk, lx, lz int) {
	wx := ch.CX*ChunkSize + lx
	wz := ch.CZ*ChunkSize + lz

	mask := g.IslandMask(float64(wx), float64(wz))
	surface := g.SurfaceHeight(wx, wz)
	temperature, moisture := g.Climate(float64(wx), float64(wz))
	biome := Classify(temperature, moisture, surface)

	top := SurfaceBlock(biome)
	filler := fillerBlock(biome)

	for y := 0; y < ChunkHeight; y++ {
		var id byte
		switch {
		case y == 0:
			id = catalogs.Bedrock
		case y < surface-4:
			id = g.stoneAt(wx, y, wz)
		case y < surface-1:
			id = filler
		case y == surface-1:
			id = top
		case y <= SeaLevel:
			id = catalogs.Water
		default:
			id = catalogs.Air
		}

		if id != catalogs.Air && id != catalogs.Bedrock && id != catalogs.Water {
			if y > 2 && y < surface-2 && g.isCave(wx, y, wz) {
				id = catalogs.Air
			}
		}
		ch.Blocks[Index(lx, y, lz)] = id
	}

	g.plantColumn(ch, lx, lz, wx, wz, surface, mask, biome)
}

// stoneAt picks the stone body block and replaces it with ore where the ore
// field spikes. Deeper tiers are rarer; a lower secondary threshold adds a
// second, more common pair.
func (g *Generator) stoneAt(wx, y, wz int) byte {
	v := noise.FBM(g.ore, float64(wx)*oreFreq, float64(y)*oreFreq+float64(wz)*oreFreq, oreOctaves, 2.0, 0.5)
	switch {
	case v > orePrimaryThreshold:
		switch {
		case y < 16:
			return catalogs.DiamondOre
		case y < 32:
			return catalogs.GoldOre
		case y < 48:
			return catalogs.IronOre
		default:
			return catalogs.CoalOre
		}
	case v > oreSecondaryThreshold:
		if y < 32 {
			return catalogs.TinOre
		}
		return catalogs.CopperOre
	}
	if y < 32 {
		return catalogs.Deepstone
	}
	return catalogs.Stone
}

// isCave approximates 3D tunnels from two phase-shifted 2D evaluations:
// a voxel is carved only where both samples exceed the threshold.
func (g *Generator) isCave(wx, y, wz int) bool {
	fx := float64(wx) * caveFreq
	fz := float64(wz)*caveFreq + float64(y)*caveYFreq
	c1 := noise.FBM(g.cave, fx, fz, caveOctaves, 2.0, 0.5)
	if c1 <= caveThreshold {
		return false
	}
	c2 := noise.FBM(g.cave, fx+cavePhase, fz+cavePhase, caveOctaves, 2.0, 0.5)
	return c2 > caveThreshold
}
