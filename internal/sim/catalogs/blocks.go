package catalogs

// Block ids are 8-bit wire values; 0 is always air. The generator only ever
// emits ids from this palette, so every id a client receives resolves to a
// definition.
const (
	Air byte = iota
	Bedrock
	Stone
	Deepstone
	Dirt
	Grass
	Sand
	Snow
	Clay
	MossyStone
	Water
	Log
	Leaves
	Tallgrass
	Flower
	Herb
	CoalOre
	IronOre
	GoldOre
	DiamondOre
	CopperOre
	TinOre
)

// BlockDef describes one palette entry as exposed to collaborators
// (physics, mining, spawn probes).
type BlockDef struct {
	ID       byte    `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Solid    bool    `json:"solid" yaml:"solid"`
	Hardness float64 `json:"hardness" yaml:"hardness"`
}

func defaultDefs() []BlockDef {
	return []BlockDef{
		{ID: Air, Name: "air", Solid: false, Hardness: 0},
		{ID: Bedrock, Name: "bedrock", Solid: true, Hardness: -1},
		{ID: Stone, Name: "stone", Solid: true, Hardness: 1.5},
		{ID: Deepstone, Name: "deepstone", Solid: true, Hardness: 3},
		{ID: Dirt, Name: "dirt", Solid: true, Hardness: 0.5},
		{ID: Grass, Name: "grass", Solid: true, Hardness: 0.6},
		{ID: Sand, Name: "sand", Solid: true, Hardness: 0.5},
		{ID: Snow, Name: "snow", Solid: true, Hardness: 0.2},
		{ID: Clay, Name: "clay", Solid: true, Hardness: 0.6},
		{ID: MossyStone, Name: "mossy_stone", Solid: true, Hardness: 1.5},
		{ID: Water, Name: "water", Solid: false, Hardness: 0},
		{ID: Log, Name: "log", Solid: true, Hardness: 2},
		{ID: Leaves, Name: "leaves", Solid: true, Hardness: 0.2},
		{ID: Tallgrass, Name: "tallgrass", Solid: false, Hardness: 0},
		{ID: Flower, Name: "flower", Solid: false, Hardness: 0},
		{ID: Herb, Name: "herb", Solid: false, Hardness: 0},
		{ID: CoalOre, Name: "coal_ore", Solid: true, Hardness: 3},
		{ID: IronOre, Name: "iron_ore", Solid: true, Hardness: 3},
		{ID: GoldOre, Name: "gold_ore", Solid: true, Hardness: 3},
		{ID: DiamondOre, Name: "diamond_ore", Solid: true, Hardness: 3},
		{ID: CopperOre, Name: "copper_ore", Solid: true, Hardness: 3},
		{ID: TinOre, Name: "tin_ore", Solid: true, Hardness: 3},
	}
}
