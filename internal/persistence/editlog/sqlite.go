// Package editlog persists the sparse per-chunk diff of player edits in
// SQLite. Terrain itself is regenerable from the seed, so this journal is
// the only state that must survive eviction and restarts.
package editlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"voxelisle/internal/sim/terrain"
)

type SQLiteJournal struct {
	mu sync.Mutex
	db *sql.DB

	record *sql.Stmt
	replay *sql.Stmt
}

func Open(path string) (*SQLiteJournal, error) {
	if path == "" {
		return nil, fmt.Errorf("editlog: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS block_edits (
	cx    INTEGER NOT NULL,
	cz    INTEGER NOT NULL,
	idx   INTEGER NOT NULL,
	block INTEGER NOT NULL,
	PRIMARY KEY (cx, cz, idx)
);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("editlog: schema: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if j.record, err = db.Prepare(`INSERT INTO block_edits (cx, cz, idx, block) VALUES (?, ?, ?, ?)
		ON CONFLICT (cx, cz, idx) DO UPDATE SET block = excluded.block`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if j.replay, err = db.Prepare(`SELECT idx, block FROM block_edits WHERE cx = ? AND cz = ?`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Record upserts one edit. The latest write per cell wins.
func (j *SQLiteJournal) Record(k terrain.ChunkKey, idx int, block byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.record.Exec(k.CX, k.CZ, idx, int(block))
	return err
}

// Replay returns the chunk's edit diff, keyed by flat block index.
func (j *SQLiteJournal) Replay(k terrain.ChunkKey) (map[int]byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.replay.Query(k.CX, k.CZ)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edits := map[int]byte{}
	for rows.Next() {
		var idx, block int
		if err := rows.Scan(&idx, &block); err != nil {
			return nil, err
		}
		edits[idx] = byte(block)
	}
	return edits, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
