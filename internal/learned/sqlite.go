package learned

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps learned mappings in a SQLite database. Preferred over
// the flat file once the store grows past hand-editing size.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS learned_mappings (
	id          TEXT PRIMARY KEY,
	wine_name   TEXT NOT NULL,
	name_norm   TEXT NOT NULL,
	vintage_key TEXT NOT NULL,
	item_no     INTEGER NOT NULL,
	note        TEXT NOT NULL DEFAULT '',
	recorded_at TEXT NOT NULL,
	UNIQUE(name_norm, vintage_key, item_no)
);

CREATE INDEX IF NOT EXISTS idx_learned_mappings_key ON learned_mappings(name_norm, vintage_key);
`

// NewSQLiteStore opens (or creates) the database at path and configures WAL
// mode.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "learned: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "learned: exec %s", pragma)
		}
	}

	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "learned: migrate")
	}

	return &SQLiteStore{db: db}, nil
}

// LoadAll reads every mapping in insertion order, so the lookup map keeps
// the most recent item number per key.
func (s *SQLiteStore) LoadAll(ctx context.Context) (map[Key]int, []Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wine_name, vintage_key, item_no, note, recorded_at
		FROM learned_mappings
		ORDER BY rowid`)
	if err != nil {
		return nil, nil, eris.Wrap(err, "learned: query mappings")
	}
	defer rows.Close()

	lookup := make(map[Key]int)
	var entries []Entry

	for rows.Next() {
		var (
			e          Entry
			recordedAt string
		)
		if err := rows.Scan(&e.WineName, &e.VintageKey, &e.ItemNo, &e.Note, &recordedAt); err != nil {
			return nil, nil, eris.Wrap(err, "learned: scan mapping")
		}
		if t, err := time.Parse(TimeLayout, recordedAt); err == nil {
			e.RecordedAt = t
		}

		entries = append(entries, e)
		lookup[NewKey(e.WineName, e.VintageKey)] = e.ItemNo
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "learned: iterate mappings")
	}

	return lookup, entries, nil
}

// Append inserts entries, relying on the unique triple constraint for
// dedup.
func (s *SQLiteStore) Append(ctx context.Context, entries []Entry) (int, int, error) {
	if len(entries) == 0 {
		return 0, 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, eris.Wrap(err, "learned: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO learned_mappings (id, wine_name, name_norm, vintage_key, item_no, note, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, eris.Wrap(err, "learned: prepare insert")
	}
	defer stmt.Close()

	added, skipped := 0, 0
	for _, e := range entries {
		key := NewKey(e.WineName, e.VintageKey)
		recordedAt := e.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now()
		}

		res, err := stmt.ExecContext(ctx,
			uuid.New().String(), e.WineName, key.Name, key.Vintage,
			e.ItemNo, e.Note, recordedAt.Format(TimeLayout))
		if err != nil {
			return added, skipped, eris.Wrap(err, "learned: insert mapping")
		}

		n, err := res.RowsAffected()
		if err != nil {
			return added, skipped, eris.Wrap(err, "learned: rows affected")
		}
		if n == 0 {
			skipped++
		} else {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return added, skipped, eris.Wrap(err, "learned: commit")
	}
	return added, skipped, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
