// chunkprobe generates a single chunk and prints a column summary plus the
// encoded wire size. Handy for eyeballing a seed before hosting it.
package main

import (
	"flag"
	"fmt"

	"voxelisle/internal/sim/encoding"
	"voxelisle/internal/sim/terrain"
)

func main() {
	var (
		seed = flag.Int64("seed", 1337, "world seed")
		cx   = flag.Int("cx", 0, "chunk x")
		cz   = flag.Int("cz", 0, "chunk z")
	)
	flag.Parse()

	gen := terrain.NewGenerator(*seed)
	ch := gen.Generate(*cx, *cz)

	fmt.Printf("chunk (%d,%d) seed %d\n", *cx, *cz, *seed)
	for lz := 0; lz < terrain.ChunkSize; lz += 4 {
		for lx := 0; lx < terrain.ChunkSize; lx += 4 {
			wx := *cx*terrain.ChunkSize + lx
			wz := *cz*terrain.ChunkSize + lz
			h := gen.SurfaceHeight(wx, wz)
			b := gen.BiomeAt(wx, wz)
			fmt.Printf("%3d/%-12s", h, b)
		}
		fmt.Println()
	}

	raw := encoding.EncodeRLE(ch.Blocks)
	fmt.Printf("rle: %d bytes for %d blocks (%.1fx)\n", len(raw), terrain.ChunkVolume, float64(terrain.ChunkVolume)/float64(len(raw)))
}
