package terrain

import "voxelisle/internal/sim/catalogs"

// Biome classifies a column. Biomes are never stored: they are a pure
// function of (temperature, moisture, height) and recomputed on demand.
type Biome int

const (
	Ocean Biome = iota
	Beach
	Grassland
	Forest
	DarkForest
	Desert
	Snowlands
	Mountain
	Swamp
)

var biomeNames = [...]string{
	Ocean:      "OCEAN",
	Beach:      "BEACH",
	Grassland:  "GRASSLAND",
	Forest:     "FOREST",
	DarkForest: "DARK_FOREST",
	Desert:     "DESERT",
	Snowlands:  "SNOW",
	Mountain:   "MOUNTAIN",
	Swamp:      "SWAMP",
}

func (b Biome) String() string {
	if b < 0 || int(b) >= len(biomeNames) {
		return "UNKNOWN"
	}
	return biomeNames[b]
}

// Classify maps climate and surface height to a biome. Total over
// temperature, moisture in [0,1] and any height: every input reaches exactly
// one branch.
func Classify(temperature, moisture float64, height int) Biome {
	switch {
	case height < SeaLevel-2:
		return Ocean
	case height < SeaLevel+2:
		return Beach
	case height > TerrainMaxHeight-20:
		return Mountain
	}
	switch {
	case temperature > 0.66: // hot
		if moisture < 0.33 {
			return Desert
		}
		if moisture > 0.66 {
			return Swamp
		}
		return Grassland
	case temperature < 0.33: // cold
		return Snowlands
	default: // temperate
		if moisture > 0.66 {
			return DarkForest
		}
		if moisture > 0.5 {
			return Forest
		}
		return Grassland
	}
}

// SurfaceBlock is the topmost solid block for a biome.
func SurfaceBlock(b Biome) byte {
	switch b {
	case Desert, Beach:
		return catalogs.Sand
	case Snowlands:
		return catalogs.Snow
	case Swamp:
		return catalogs.Clay
	case DarkForest:
		return catalogs.MossyStone
	default:
		return catalogs.Grass
	}
}

// fillerBlock sits in the band just under the surface.
func fillerBlock(b Biome) byte {
	if b == Desert || b == Beach {
		return catalogs.Sand
	}
	return catalogs.Dirt
}

// supportsTrees reports whether the biome grows trees.
func supportsTrees(b Biome) bool {
	switch b {
	case Forest, DarkForest, Grassland, Swamp:
		return true
	}
	return false
}

// supportsVegetation reports whether loose plant cover can appear.
func supportsVegetation(b Biome) bool {
	switch b {
	case Grassland, Forest, DarkForest, Swamp:
		return true
	}
	return false
}

// supportsFlowers is stricter than vegetation: open, mild biomes only.
func supportsFlowers(b Biome) bool {
	return b == Grassland || b == Forest
}

// supportsHerbs covers the gatherable herb nodes.
func supportsHerbs(b Biome) bool {
	return b == Grassland || b == Forest || b == Swamp
}
