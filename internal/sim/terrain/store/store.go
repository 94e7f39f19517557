// Package store keeps generated chunks in memory, sharded by coordinate so
// work on distinct chunks never contends on one lock. A chunk is generated
// on first access by any consumer, mutated in place by edits, and dropped by
// eviction when no active position remains within the load radius.
package store

import (
	"sync"

	"voxelisle/internal/sim/catalogs"
	"voxelisle/internal/sim/encoding"
	"voxelisle/internal/sim/mathx"
	"voxelisle/internal/sim/terrain"
)

// EditJournal persists the sparse diff of player edits over regenerable
// terrain. A nil journal means far-away edits are lost on eviction.
type EditJournal interface {
	Record(k terrain.ChunkKey, idx int, block byte) error
	Replay(k terrain.ChunkKey) (map[int]byte, error)
}

// ChangeFunc observes committed block edits (for remeshing and
// other-client notification). Called outside the shard lock.
type ChangeFunc func(k terrain.ChunkKey, wx, wy, wz int, id byte)

type shard struct {
	mu     sync.RWMutex
	chunks map[terrain.ChunkKey]*terrain.Chunk
}

type Store struct {
	gen     *terrain.Generator
	journal EditJournal
	shards  []shard

	notifyMu sync.RWMutex
	notify   []ChangeFunc
}

// New builds a store over gen with the given shard count. journal may be nil.
func New(gen *terrain.Generator, journal EditJournal, shards int) *Store {
	if shards <= 0 {
		shards = 32
	}
	s := &Store{
		gen:     gen,
		journal: journal,
		shards:  make([]shard, shards),
	}
	for i := range s.shards {
		s.shards[i].chunks = map[terrain.ChunkKey]*terrain.Chunk{}
	}
	return s
}

func (s *Store) shardFor(k terrain.ChunkKey) *shard {
	h := mathx.Hash2(0x5eed, k.CX, k.CZ)
	return &s.shards[h%uint64(len(s.shards))]
}

// OnChange registers a block-change observer.
func (s *Store) OnChange(fn ChangeFunc) {
	s.notifyMu.Lock()
	s.notify = append(s.notify, fn)
	s.notifyMu.Unlock()
}

// GetOrGenChunk returns the cached chunk, generating it on miss. Concurrent
// callers for the same coordinate serialize on the shard lock and observe
// one chunk instance; journaled edits are replayed over fresh terrain before
// the chunk is published.
func (s *Store) GetOrGenChunk(cx, cz int) *terrain.Chunk {
	k := terrain.ChunkKey{CX: cx, CZ: cz}
	sh := s.shardFor(k)

	sh.mu.RLock()
	ch, ok := sh.chunks[k]
	sh.mu.RUnlock()
	if ok {
		return ch
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if ch, ok := sh.chunks[k]; ok {
		return ch
	}
	ch = s.gen.Generate(cx, cz)
	if s.journal != nil {
		if edits, err := s.journal.Replay(k); err == nil {
			for idx, id := range edits {
				if idx >= 0 && idx < terrain.ChunkVolume {
					ch.Blocks[idx] = id
				}
			}
		}
	}
	sh.chunks[k] = ch
	return ch
}

// GetBlock reads one block by world coordinate. Vertical coordinates outside
// [0, ChunkHeight) are air, not an error.
func (s *Store) GetBlock(wx, wy, wz int) byte {
	if wy < 0 || wy >= terrain.ChunkHeight {
		return catalogs.Air
	}
	cx := mathx.FloorDiv(wx, terrain.ChunkSize)
	cz := mathx.FloorDiv(wz, terrain.ChunkSize)
	lx := mathx.Mod(wx, terrain.ChunkSize)
	lz := mathx.Mod(wz, terrain.ChunkSize)

	ch := s.GetOrGenChunk(cx, cz)
	sh := s.shardFor(terrain.ChunkKey{CX: cx, CZ: cz})
	sh.mu.RLock()
	id := ch.Get(lx, wy, lz)
	sh.mu.RUnlock()
	return id
}

// SetBlock writes one block by world coordinate, generating the owning chunk
// first if needed. Out-of-range vertical writes are ignored. The write is
// atomic relative to SerializeChunk on the same chunk.
func (s *Store) SetBlock(wx, wy, wz int, id byte) {
	if wy < 0 || wy >= terrain.ChunkHeight {
		return
	}
	cx := mathx.FloorDiv(wx, terrain.ChunkSize)
	cz := mathx.FloorDiv(wz, terrain.ChunkSize)
	lx := mathx.Mod(wx, terrain.ChunkSize)
	lz := mathx.Mod(wz, terrain.ChunkSize)
	k := terrain.ChunkKey{CX: cx, CZ: cz}

	ch := s.GetOrGenChunk(cx, cz)
	sh := s.shardFor(k)
	sh.mu.Lock()
	ch.Set(lx, wy, lz, id)
	sh.mu.Unlock()

	if s.journal != nil {
		_ = s.journal.Record(k, terrain.Index(lx, wy, lz), id)
	}

	s.notifyMu.RLock()
	observers := s.notify
	s.notifyMu.RUnlock()
	for _, fn := range observers {
		fn(k, wx, wy, wz, id)
	}
}

// SerializeChunk returns the chunk's RLE stream, generating it on miss. The
// block array is copied under the shard lock so no torn mid-edit state is
// ever encoded.
func (s *Store) SerializeChunk(cx, cz int) []byte {
	ch := s.GetOrGenChunk(cx, cz)
	sh := s.shardFor(terrain.ChunkKey{CX: cx, CZ: cz})

	sh.mu.RLock()
	blocks := make([]byte, len(ch.Blocks))
	copy(blocks, ch.Blocks)
	sh.mu.RUnlock()

	return encoding.EncodeRLE(blocks)
}

// UnloadDistantChunks drops every cached chunk farther than loadRadius
// chunks from all active positions. Edits to dropped chunks survive only
// through the journal.
func (s *Store) UnloadDistantChunks(active []terrain.ChunkKey, loadRadius int) int {
	r2 := loadRadius * loadRadius
	removed := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k := range sh.chunks {
			if nearAny(k, active, r2) {
				continue
			}
			delete(sh.chunks, k)
			removed++
		}
		sh.mu.Unlock()
	}
	return removed
}

func nearAny(k terrain.ChunkKey, active []terrain.ChunkKey, r2 int) bool {
	for _, a := range active {
		dx := k.CX - a.CX
		dz := k.CZ - a.CZ
		if dx*dx+dz*dz <= r2 {
			return true
		}
	}
	return false
}

// LoadedChunkCount reports how many chunks are resident, for diagnostics.
func (s *Store) LoadedChunkCount() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.chunks)
		sh.mu.RUnlock()
	}
	return n
}
