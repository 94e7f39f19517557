package terrain

// Shared world geometry. Every consumer of the wire format must agree on
// these and on the index mapping below.
const (
	ChunkSize   = 32
	ChunkHeight = 128
	ChunkVolume = ChunkSize * ChunkSize * ChunkHeight

	SeaLevel         = 42
	TerrainMinHeight = 8
	TerrainMaxHeight = 96

	// WorldRadius bounds land to a finite archipelago; beyond it the island
	// mask is zero and every column is ocean floor.
	WorldRadius = 1800
)

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is one 32x32x128 column grid as a flat block-id array.
// Invariant: len(Blocks) == ChunkVolume.
type Chunk struct {
	CX, CZ int
	Blocks []byte
}

// Index maps local (x, y, z) to the flat array offset. The mapping is a
// bijection over [0,ChunkSize) x [0,ChunkHeight) x [0,ChunkSize).
func Index(x, y, z int) int {
	return (y*ChunkSize+z)*ChunkSize + x
}

// Coords inverts Index.
func Coords(i int) (x, y, z int) {
	x = i % ChunkSize
	z = (i / ChunkSize) % ChunkSize
	y = i / (ChunkSize * ChunkSize)
	return
}

func (c *Chunk) Get(x, y, z int) byte {
	return c.Blocks[Index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, id byte) {
	c.Blocks[Index(x, y, z)] = id
}
