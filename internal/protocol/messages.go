package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	PlayerID        string      `json:"player_id"`
	WorldParams     WorldParams `json:"world_params"`
	BlockPalette    DigestRef   `json:"block_palette"`
	Spawn           [3]int      `json:"spawn"`
}

// WorldParams are the shared constants every consumer must match.
type WorldParams struct {
	Seed             int64 `json:"seed"`
	ChunkSize        int   `json:"chunk_size"`
	ChunkHeight      int   `json:"chunk_height"`
	SeaLevel         int   `json:"sea_level"`
	TerrainMinHeight int   `json:"terrain_min_height"`
	TerrainMaxHeight int   `json:"terrain_max_height"`
	StreamRadius     int   `json:"stream_radius"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CHUNK (server -> client): one chunk's block grid as base64(RLE).
type ChunkMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	CX              int    `json:"cx"`
	CZ              int    `json:"cz"`
	Blocks          string `json:"blocks"`
}

// BLOCK_UPDATE (server -> client): one committed edit.
type BlockUpdateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Pos             [3]int `json:"pos"`
	Block           byte   `json:"block"`
}

// ACT (client -> server). Kind selects the payload fields.
const (
	ActMove     = "MOVE"
	ActSetBlock = "SET_BLOCK"
)

type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Kind            string `json:"kind"`
	Pos             [3]int `json:"pos"`
	Block           byte   `json:"block,omitempty"`
}

// ERROR (server -> client): request-scoped failure; the session stays up.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
