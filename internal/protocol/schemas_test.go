package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelisle/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, msg any) {
		t.Helper()
		raw, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	validate(compile("hello.schema.json"), protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      "p1",
	})

	validate(compile("welcome.schema.json"), protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       "b6c8f7e2-1234-4cde-8f00-0123456789ab",
		PlayerID:        "p1",
		WorldParams: protocol.WorldParams{
			Seed:             42069,
			ChunkSize:        32,
			ChunkHeight:      128,
			SeaLevel:         42,
			TerrainMinHeight: 8,
			TerrainMaxHeight: 96,
			StreamRadius:     6,
		},
		BlockPalette: protocol.DigestRef{Digest: "deadbeef", Count: 22},
		Spawn:        [3]int{0, 64, 0},
	})

	validate(compile("chunk.schema.json"), protocol.ChunkMsg{
		Type:            protocol.TypeChunk,
		ProtocolVersion: protocol.Version,
		CX:              -3,
		CZ:              7,
		Blocks:          "AQIDBA==",
	})

	validate(compile("block_update.schema.json"), protocol.BlockUpdateMsg{
		Type:            protocol.TypeBlockUpdate,
		ProtocolVersion: protocol.Version,
		Pos:             [3]int{10, 50, -4},
		Block:           5,
	})

	validate(compile("act.schema.json"), protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Kind:            protocol.ActSetBlock,
		Pos:             [3]int{1, 2, 3},
		Block:           12,
	})
	validate(compile("act.schema.json"), protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Kind:            protocol.ActMove,
		Pos:             [3]int{5, 43, 5},
	})
}

func TestSchemas_RejectBadSamples(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "act.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var v any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "kind":"FLY",
	  "pos":[0,0,0]
	}`), &v)
	if err := s.Validate(v); err == nil {
		t.Fatal("unknown act kind accepted")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := protocol.DecodeBase([]byte(`{"type":"HELLO","protocol_version":"1.0","player_name":"x"}`))
	if err != nil {
		t.Fatalf("DecodeBase: %v", err)
	}
	if m.Type != protocol.TypeHello || m.ProtocolVersion != protocol.Version {
		t.Fatalf("unexpected base: %+v", m)
	}

	if _, err := protocol.DecodeBase([]byte(`{"type":`)); err == nil {
		t.Fatal("malformed json accepted")
	}
}

func TestIsKnownCode(t *testing.T) {
	for _, c := range []string{
		protocol.ErrProtoBadRequest,
		protocol.ErrProtoVersion,
		protocol.ErrProtoBadChunk,
		protocol.ErrBadRequest,
		protocol.ErrInvalidTarget,
		protocol.ErrInternal,
	} {
		if !protocol.IsKnownCode(c) {
			t.Fatalf("code %q not known", c)
		}
	}
	if protocol.IsKnownCode("E_MADE_UP") {
		t.Fatal("unknown code accepted")
	}
}
