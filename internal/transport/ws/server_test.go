package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelisle/internal/protocol"
	"voxelisle/internal/sim/catalogs"
	"voxelisle/internal/sim/encoding"
	"voxelisle/internal/sim/terrain"
	"voxelisle/internal/sim/terrain/store"
	"voxelisle/internal/sim/tuning"
)

func testTuning() tuning.Tuning {
	t := tuning.Defaults()
	t.TickRateHz = 50 // fast ticks so streaming starts quickly
	t.StreamRadiusChunks = 2
	t.StreamBatchPerTick = 4
	t.LoadRadiusChunks = 4
	return t
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gen := terrain.NewGenerator(42069)
	st := store.New(gen, nil, 8)
	reg := catalogs.Default()
	logger := log.New(io.Discard, "", 0)
	srv := NewServer(gen, st, reg, testTuning(), logger, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func join(t *testing.T, ts *httptest.Server, name string) (*websocket.Conn, protocol.WelcomeMsg) {
	t.Helper()
	conn := dial(t, ts)
	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, PlayerName: name}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write HELLO: %v", err)
	}
	var welcome protocol.WelcomeMsg
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatalf("read WELCOME: %v", err)
	}
	return conn, welcome
}

// readUntil reads messages until one of the wanted type arrives, skipping
// everything else (chunk stream keeps flowing in the background).
func readUntil(t *testing.T, conn *websocket.Conn, msgType string, deadline time.Duration) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(deadline))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		base, err := protocol.DecodeBase(raw)
		if err != nil {
			t.Fatalf("bad message: %v", err)
		}
		if base.Type == msgType {
			return raw
		}
	}
}

func TestHandshake_Welcome(t *testing.T) {
	_, ts := newTestServer(t)
	_, welcome := join(t, ts, "alice")

	if welcome.Type != protocol.TypeWelcome {
		t.Fatalf("type %q", welcome.Type)
	}
	if welcome.SessionID == "" || welcome.PlayerID == "" {
		t.Fatal("missing session or player id")
	}
	wp := welcome.WorldParams
	if wp.Seed != 42069 || wp.ChunkSize != terrain.ChunkSize || wp.ChunkHeight != terrain.ChunkHeight {
		t.Fatalf("world params: %+v", wp)
	}
	if welcome.BlockPalette.Digest != catalogs.Default().Digest() {
		t.Fatal("palette digest mismatch")
	}
	if welcome.BlockPalette.Count != catalogs.Default().Count() {
		t.Fatalf("palette count %d", welcome.BlockPalette.Count)
	}

	// Spawn sits just above the terrain surface at the origin.
	wantY := terrain.NewGenerator(42069).SurfaceHeight(0, 0) + 1
	if welcome.Spawn != [3]int{0, wantY, 0} {
		t.Fatalf("spawn %v, want [0 %d 0]", welcome.Spawn, wantY)
	}
}

func TestHandshake_RejectsWrongVersion(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.9", PlayerName: "bob"}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write HELLO: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection survived a version mismatch")
	}
}

func TestHandshake_RejectsNonHello(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	act := protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, Kind: protocol.ActMove}
	if err := conn.WriteJSON(act); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection survived a pre-handshake ACT")
	}
}

func TestStream_DeliversDecodableChunks(t *testing.T) {
	_, ts := newTestServer(t)
	conn, _ := join(t, ts, "carol")

	raw := readUntil(t, conn, protocol.TypeChunk, 5*time.Second)
	var chunk protocol.ChunkMsg
	if err := json.Unmarshal(raw, &chunk); err != nil {
		t.Fatalf("unmarshal CHUNK: %v", err)
	}

	// The first chunk is the one under the player.
	if chunk.CX != 0 || chunk.CZ != 0 {
		t.Fatalf("first chunk (%d,%d), want (0,0)", chunk.CX, chunk.CZ)
	}

	rle, err := encoding.DecodeText(chunk.Blocks)
	if err != nil {
		t.Fatalf("decode text: %v", err)
	}
	blocks, err := encoding.DecodeRLE(rle, terrain.ChunkVolume)
	if err != nil {
		t.Fatalf("decode rle: %v", err)
	}
	want := terrain.NewGenerator(42069).Generate(0, 0)
	for i := range blocks {
		if blocks[i] != want.Blocks[i] {
			t.Fatalf("streamed chunk diverges from generation at index %d", i)
		}
	}
}

func TestAct_SetBlockBroadcastsUpdate(t *testing.T) {
	_, ts := newTestServer(t)
	conn, _ := join(t, ts, "dave")

	// Wait for the spawn chunk so the broadcast filter considers it delivered.
	readUntil(t, conn, protocol.TypeChunk, 5*time.Second)

	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Kind:            protocol.ActSetBlock,
		Pos:             [3]int{5, 60, 5},
		Block:           catalogs.Log,
	}
	if err := conn.WriteJSON(act); err != nil {
		t.Fatalf("write ACT: %v", err)
	}

	raw := readUntil(t, conn, protocol.TypeBlockUpdate, 5*time.Second)
	var update protocol.BlockUpdateMsg
	if err := json.Unmarshal(raw, &update); err != nil {
		t.Fatalf("unmarshal BLOCK_UPDATE: %v", err)
	}
	if update.Pos != [3]int{5, 60, 5} || update.Block != catalogs.Log {
		t.Fatalf("unexpected update: %+v", update)
	}
}

func TestAct_UnknownBlockRejected(t *testing.T) {
	_, ts := newTestServer(t)
	conn, _ := join(t, ts, "erin")

	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Kind:            protocol.ActSetBlock,
		Pos:             [3]int{0, 60, 0},
		Block:           250,
	}
	if err := conn.WriteJSON(act); err != nil {
		t.Fatalf("write ACT: %v", err)
	}

	raw := readUntil(t, conn, protocol.TypeError, 5*time.Second)
	var errMsg protocol.ErrorMsg
	if err := json.Unmarshal(raw, &errMsg); err != nil {
		t.Fatalf("unmarshal ERROR: %v", err)
	}
	if errMsg.Code != protocol.ErrInvalidTarget {
		t.Fatalf("code %q, want %q", errMsg.Code, protocol.ErrInvalidTarget)
	}
}

func TestAct_MoveRecentersStream(t *testing.T) {
	srv, ts := newTestServer(t)
	conn, _ := join(t, ts, "frank")

	readUntil(t, conn, protocol.TypeChunk, 5*time.Second)

	far := [3]int{100 * terrain.ChunkSize, 60, 100 * terrain.ChunkSize}
	act := protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, Kind: protocol.ActMove, Pos: far}
	if err := conn.WriteJSON(act); err != nil {
		t.Fatalf("write ACT: %v", err)
	}

	// Eventually the chunk under the new position streams out.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("chunk at the new center never arrived")
		}
		raw := readUntil(t, conn, protocol.TypeChunk, 5*time.Second)
		var chunk protocol.ChunkMsg
		if err := json.Unmarshal(raw, &chunk); err != nil {
			t.Fatalf("unmarshal CHUNK: %v", err)
		}
		if chunk.CX == 100 && chunk.CZ == 100 {
			break
		}
	}

	// The far position is what eviction sees as active.
	keys := srv.activeChunkKeys()
	if len(keys) != 1 || keys[0] != (terrain.ChunkKey{CX: 100, CZ: 100}) {
		t.Fatalf("active keys %v", keys)
	}
}
