// Package learned persists confirmed wine-name to item-number mappings.
// Every successful high-confidence match and every applied human correction
// lands here, so recognition improves run over run.
package learned

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/avu-sa/winematch/internal/normalize"
)

// Entry is one learned mapping.
type Entry struct {
	WineName   string
	VintageKey string // "NV" or the 4-digit year
	ItemNo     int
	RecordedAt time.Time
	Note       string
}

// Key identifies a mapping by normalized name and vintage. Lookups from
// extracted text and entries recorded from the catalog must land on the same
// key regardless of spelling.
type Key struct {
	Name    string
	Vintage string
}

// NewKey builds a lookup key from a raw wine name and vintage key.
func NewKey(name, vintageKey string) Key {
	return Key{
		Name:    normalize.Name(name),
		Vintage: strings.ToUpper(strings.TrimSpace(vintageKey)),
	}
}

// Store is a learned-mapping backend.
type Store interface {
	// LoadAll returns the lookup map and all entries in recorded order.
	// When several entries share a key, the most recently recorded one wins
	// the lookup.
	LoadAll(ctx context.Context) (map[Key]int, []Entry, error)
	// Append records entries, skipping any (name, vintage, item_no) triple
	// already present. Existing entries are never rewritten.
	Append(ctx context.Context, entries []Entry) (added, skipped int, err error)
	Close() error
}

// Open constructs the store named by driver.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, eris.Errorf("learned: unknown store driver %q", driver)
	}
}

// tripleKey is the dedup identity of an entry.
func tripleKey(e Entry) string {
	key := NewKey(e.WineName, e.VintageKey)
	return key.Name + "|" + key.Vintage + "|" + strconv.Itoa(e.ItemNo)
}
