package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	persistlog "voxelisle/internal/persistence/log"
	"voxelisle/internal/protocol"
	"voxelisle/internal/sim/catalogs"
	"voxelisle/internal/sim/encoding"
	"voxelisle/internal/sim/mathx"
	"voxelisle/internal/sim/stream"
	"voxelisle/internal/sim/terrain"
	"voxelisle/internal/sim/terrain/store"
	"voxelisle/internal/sim/tuning"
)

// Server streams chunks to connected players over websockets and applies
// their block edits. Each connection gets its own streamer; the store and
// generator are shared.
type Server struct {
	gen   *terrain.Generator
	store *store.Store
	reg   *catalogs.Registry
	tune  tuning.Tuning
	log   *log.Logger
	edits *persistlog.EditLogger // optional audit stream

	upgrader websocket.Upgrader

	mu      sync.Mutex
	players map[string]*player
}

type player struct {
	id   string
	name string
	out  chan []byte

	mu       sync.Mutex
	pos      [3]int
	streamer *stream.Streamer
}

func NewServer(gen *terrain.Generator, st *store.Store, reg *catalogs.Registry, tune tuning.Tuning, logger *log.Logger, edits *persistlog.EditLogger) *Server {
	s := &Server{
		gen:     gen,
		store:   st,
		reg:     reg,
		tune:    tune,
		log:     logger,
		edits:   edits,
		players: map[string]*player{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	st.OnChange(s.broadcastBlockUpdate)
	return s
}

// Run drives periodic eviction until ctx is cancelled. Chunks beyond the
// load radius of every connected player are dropped; their terrain
// regenerates identically on the next access.
func (s *Server) Run(ctx context.Context) {
	period := time.Duration(s.tune.EvictEveryTicks) * s.tickDuration()
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			active := s.activeChunkKeys()
			if len(active) == 0 {
				continue
			}
			if removed := s.store.UnloadDistantChunks(active, s.tune.LoadRadiusChunks); removed > 0 {
				s.log.Printf("evicted %d chunks, %d loaded", removed, s.store.LoadedChunkCount())
			}
		}
	}
}

func (s *Server) tickDuration() time.Duration {
	return time.Second / time.Duration(s.tune.TickRateHz)
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		p := s.handshake(conn)
		if p == nil {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-p.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Per-player stream tick.
		go s.streamLoop(ctx, p)

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			s.handleMessage(p, msg)
		}

		s.mu.Lock()
		delete(s.players, p.id)
		s.mu.Unlock()
		s.log.Printf("player %s (%s) left", p.name, p.id)
	}
}

func (s *Server) handshake(conn *websocket.Conn) *player {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, protocol.ErrProtoVersion), time.Now().Add(time.Second))
		return nil
	}
	name := hello.PlayerName
	if name == "" {
		name = "anonymous"
	}

	spawnY := s.gen.SurfaceHeight(0, 0) + 1
	p := &player{
		id:       uuid.NewString(),
		name:     name,
		out:      make(chan []byte, 256),
		pos:      [3]int{0, spawnY, 0},
		streamer: stream.New(s.tune.StreamRadiusChunks, s.tune.StreamBatchPerTick),
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       p.id,
		PlayerID:        p.id,
		WorldParams: protocol.WorldParams{
			Seed:             s.gen.Seed(),
			ChunkSize:        terrain.ChunkSize,
			ChunkHeight:      terrain.ChunkHeight,
			SeaLevel:         terrain.SeaLevel,
			TerrainMinHeight: terrain.TerrainMinHeight,
			TerrainMaxHeight: terrain.TerrainMaxHeight,
			StreamRadius:     s.tune.StreamRadiusChunks,
		},
		BlockPalette: protocol.DigestRef{Digest: s.reg.Digest(), Count: s.reg.Count()},
		Spawn:        p.pos,
	}
	b, err := json.Marshal(welcome)
	if err != nil {
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return nil
	}

	s.mu.Lock()
	s.players[p.id] = p
	s.mu.Unlock()
	s.log.Printf("player %s joined as %s", name, p.id)
	return p
}

// streamLoop sends the next batch of chunks every tick, nearest first.
func (s *Server) streamLoop(ctx context.Context, p *player) {
	ticker := time.NewTicker(s.tickDuration())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			center := chunkKeyOf(p.pos)
			keys := p.streamer.Next(center)
			p.mu.Unlock()

			for _, k := range keys {
				raw := s.store.SerializeChunk(k.CX, k.CZ)
				msg := protocol.ChunkMsg{
					Type:            protocol.TypeChunk,
					ProtocolVersion: protocol.Version,
					CX:              k.CX,
					CZ:              k.CZ,
					Blocks:          encoding.EncodeText(raw),
				}
				if !s.send(ctx, p, msg) {
					return
				}
			}
		}
	}
}

func (s *Server) handleMessage(p *player, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeAct {
		s.sendError(p, protocol.ErrProtoBadRequest, "expected ACT")
		return
	}
	var act protocol.ActMsg
	if err := json.Unmarshal(msg, &act); err != nil {
		s.sendError(p, protocol.ErrProtoBadRequest, "malformed ACT")
		return
	}
	if act.ProtocolVersion != protocol.Version {
		s.sendError(p, protocol.ErrProtoVersion, "unsupported protocol version")
		return
	}

	switch act.Kind {
	case protocol.ActMove:
		p.mu.Lock()
		p.pos = act.Pos
		p.mu.Unlock()
	case protocol.ActSetBlock:
		if _, ok := s.reg.Lookup(act.Block); !ok {
			s.sendError(p, protocol.ErrInvalidTarget, "unknown block id")
			return
		}
		s.store.SetBlock(act.Pos[0], act.Pos[1], act.Pos[2], act.Block)
		if s.edits != nil {
			_ = s.edits.WriteEdit(persistlog.BlockEdit{
				At:     time.Now().UTC(),
				Player: p.id,
				Pos:    act.Pos,
				Block:  act.Block,
			})
		}
	default:
		s.sendError(p, protocol.ErrBadRequest, "unknown act kind")
	}
}

// broadcastBlockUpdate fans a committed edit out to every player whose
// streamer has delivered the owning chunk.
func (s *Server) broadcastBlockUpdate(k terrain.ChunkKey, wx, wy, wz int, id byte) {
	msg := protocol.BlockUpdateMsg{
		Type:            protocol.TypeBlockUpdate,
		ProtocolVersion: protocol.Version,
		Pos:             [3]int{wx, wy, wz},
		Block:           id,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.Lock()
	targets := make([]*player, 0, len(s.players))
	for _, p := range s.players {
		targets = append(targets, p)
	}
	s.mu.Unlock()

	for _, p := range targets {
		p.mu.Lock()
		delivered := p.streamer.Delivered(k)
		p.mu.Unlock()
		if !delivered {
			continue
		}
		select {
		case p.out <- b:
		default:
			// Slow consumer; the edit still reaches it with the next resend.
		}
	}
}

func (s *Server) send(ctx context.Context, p *player, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case p.out <- b:
		return true
	}
}

func (s *Server) sendError(p *player, code, message string) {
	msg := protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case p.out <- b:
	default:
	}
}

func (s *Server) activeChunkKeys() []terrain.ChunkKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]terrain.ChunkKey, 0, len(s.players))
	for _, p := range s.players {
		p.mu.Lock()
		keys = append(keys, chunkKeyOf(p.pos))
		p.mu.Unlock()
	}
	return keys
}

func chunkKeyOf(pos [3]int) terrain.ChunkKey {
	return terrain.ChunkKey{
		CX: mathx.FloorDiv(pos[0], terrain.ChunkSize),
		CZ: mathx.FloorDiv(pos[2], terrain.ChunkSize),
	}
}
