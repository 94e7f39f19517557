// Package stream tracks per-player chunk delivery: which coordinates around
// the player still need sending, nearest first, a few per tick. Delivery
// bookkeeping is independent of store residency and needs no cross-player
// synchronization.
package stream

import (
	"sort"

	"voxelisle/internal/sim/terrain"
)

type Streamer struct {
	radius int
	batch  int
	sent   map[terrain.ChunkKey]struct{}
}

// New builds a streamer with a radius in chunks and a per-tick batch size.
func New(radius, batch int) *Streamer {
	if radius <= 0 {
		radius = 1
	}
	if batch <= 0 {
		batch = 1
	}
	return &Streamer{
		radius: radius,
		batch:  batch,
		sent:   map[terrain.ChunkKey]struct{}{},
	}
}

// Next returns up to the batch size of unsent coordinates within the radius
// of center, closest first, and marks them sent. Sent-marks beyond radius+2
// are dropped so those chunks are re-sent when the player returns.
func (s *Streamer) Next(center terrain.ChunkKey) []terrain.ChunkKey {
	forget2 := (s.radius + 2) * (s.radius + 2)
	for k := range s.sent {
		if dist2(k, center) > forget2 {
			delete(s.sent, k)
		}
	}

	type item struct {
		k terrain.ChunkKey
		d int
	}
	r2 := s.radius * s.radius
	var pending []item
	for dz := -s.radius; dz <= s.radius; dz++ {
		for dx := -s.radius; dx <= s.radius; dx++ {
			if dx*dx+dz*dz > r2 {
				continue
			}
			k := terrain.ChunkKey{CX: center.CX + dx, CZ: center.CZ + dz}
			if _, ok := s.sent[k]; ok {
				continue
			}
			pending = append(pending, item{k: k, d: dx*dx + dz*dz})
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].d != pending[j].d {
			return pending[i].d < pending[j].d
		}
		if pending[i].k.CX != pending[j].k.CX {
			return pending[i].k.CX < pending[j].k.CX
		}
		return pending[i].k.CZ < pending[j].k.CZ
	})

	n := s.batch
	if n > len(pending) {
		n = len(pending)
	}
	out := make([]terrain.ChunkKey, 0, n)
	for _, it := range pending[:n] {
		s.sent[it.k] = struct{}{}
		out = append(out, it.k)
	}
	return out
}

// Delivered reports whether the chunk has been sent and not yet forgotten.
func (s *Streamer) Delivered(k terrain.ChunkKey) bool {
	_, ok := s.sent[k]
	return ok
}

func dist2(a, b terrain.ChunkKey) int {
	dx := a.CX - b.CX
	dz := a.CZ - b.CZ
	return dx*dx + dz*dz
}
