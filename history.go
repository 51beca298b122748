package stego

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one embedding remembered by HistoryDB.
type Record struct {
	Path    string
	SHA1    string
	Length  int
	Created time.Time
}

// HistoryDB remembers every embedding performed so a carrier can later be
// recognised by the checksum of its contents.
type HistoryDB struct {
	db *sql.DB
}

// NewHistoryDB opens, and if necessary creates, the SQLite database at file.
func NewHistoryDB(file string) (*HistoryDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS embedding (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL, sha1 TEXT NOT NULL, length INTEGER NOT NULL, created INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS embedding_sha1 ON embedding (sha1)"); err != nil {
		db.Close()
		return nil, err
	}

	return &HistoryDB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *HistoryDB) Close() error {
	return db.db.Close()
}

// Add records an embedding of a message of length bytes into path, whose
// contents afterwards hash to sha.
func (db *HistoryDB) Add(path, sha string, length int, created time.Time) error {
	if _, err := db.db.Exec("INSERT INTO embedding (path, sha1, length, created) VALUES (?, ?, ?, ?)", path, sha, length, created.Unix()); err != nil {
		return err
	}
	return nil
}

// FindBySHA1 returns the most recent embedding that produced sha, or nil if
// there is none.
func (db *HistoryDB) FindBySHA1(sha string) (*Record, error) {
	var r Record
	var created int64
	switch err := db.db.QueryRow("SELECT path, sha1, length, created FROM embedding WHERE sha1 = ? ORDER BY id DESC LIMIT 1", sha).Scan(&r.Path, &r.SHA1, &r.Length, &created); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		r.Created = time.Unix(created, 0)
		return &r, nil
	default:
		return nil, err
	}
}
