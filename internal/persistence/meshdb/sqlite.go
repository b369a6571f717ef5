// Package meshdb keeps mesh resources in a SQLite file so a server can run
// without a mesh directory.
package meshdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"voxelshapes.ai/internal/mesh"
	"voxelshapes.ai/internal/meshstore"
)

const schemaVersion = "1"

type DB struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

type Entry struct {
	Name      string
	Digest    string
	Size      int
	Stored    int
	UpdatedAt string
}

func OpenSQLite(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
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
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db, enc: enc, dec: dec}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meshes (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			size INTEGER NOT NULL,
			data BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	d.dec.Close()
	_ = d.enc.Close()
	return d.db.Close()
}

// Put validates data as a mesh resource and stores it compressed. It
// returns the sha256 digest of the uncompressed bytes.
func (d *DB) Put(name string, data []byte) (string, error) {
	n, err := meshstore.CleanName(name)
	if err != nil {
		return "", err
	}
	if _, err := mesh.Parse(data); err != nil {
		return "", fmt.Errorf("%s: %w", n, err)
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	packed := d.enc.EncodeAll(data, nil)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := d.db.BeginTx(context.Background(), nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meshes(name,digest,size,data,updated_at) VALUES(?,?,?,?,?)`,
		n, digest, len(data), packed, now); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return digest, nil
}

// Open implements mesh.Source.
func (d *DB) Open(name string) ([]byte, error) {
	var packed []byte
	err := d.db.QueryRow(`SELECT data FROM meshes WHERE name=?`, name).Scan(&packed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, mesh.ErrMeshNotFound)
	}
	if err != nil {
		return nil, err
	}
	out, err := d.dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: decompress: %w", name, err)
	}
	return out, nil
}

func (d *DB) List() ([]Entry, error) {
	rows, err := d.db.Query(`SELECT name,digest,size,length(data),updated_at FROM meshes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Digest, &e.Size, &e.Stored, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete reports whether a row was removed.
func (d *DB) Delete(name string) (bool, error) {
	res, err := d.db.Exec(`DELETE FROM meshes WHERE name=?`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
