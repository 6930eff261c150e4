package learned

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TimeLayout is how entry timestamps are rendered in the flat file.
const TimeLayout = "2006-01-02 15:04:05"

var fileHeader = strings.Join([]string{
	"# Wine name learning store",
	"# Format: Wine Name | Vintage | Item No. | Timestamp | Note",
	"# Lines starting with # are ignored. Later entries override earlier ones.",
	"#" + strings.Repeat("=", 80),
	"",
	"",
}, "\n")

// FileStore keeps learned mappings in a pipe-delimited UTF-8 text file.
// The file is append-only; humans read and occasionally hand-edit it, so
// prior lines are never rewritten.
type FileStore struct {
	path string
	log  *zap.Logger
}

// NewFileStore returns a store backed by the file at path. The file does
// not need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		log:  zap.L().With(zap.String("component", "learned")),
	}
}

// LoadAll reads every valid entry. A missing file is an empty store, not an
// error.
func (s *FileStore) LoadAll(_ context.Context) (map[Key]int, []Entry, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return map[Key]int{}, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "learned: open store file")
	}
	defer f.Close()

	lookup := make(map[Key]int)
	var entries []Entry

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		entries = append(entries, entry)
		lookup[NewKey(entry.WineName, entry.VintageKey)] = entry.ItemNo
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "learned: read store file")
	}

	return lookup, entries, nil
}

// Append writes new entries to the end of the file, one flush for the whole
// batch. Triples already present (or repeated within the batch) are skipped.
func (s *FileStore) Append(ctx context.Context, entries []Entry) (int, int, error) {
	if len(entries) == 0 {
		return 0, 0, nil
	}

	_, existing, err := s.LoadAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[tripleKey(e)] = true
	}

	fresh := len(existing) == 0
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		fresh = false
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, 0, eris.Wrap(err, "learned: open store file for append")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if fresh {
		if _, err := w.WriteString(fileHeader); err != nil {
			return 0, 0, eris.Wrap(err, "learned: write header")
		}
	}

	added, skipped := 0, 0
	for _, e := range entries {
		key := tripleKey(e)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		if _, err := w.WriteString(formatLine(e)); err != nil {
			return added, skipped, eris.Wrap(err, "learned: write entry")
		}
		added++
	}

	if err := w.Flush(); err != nil {
		return added, skipped, eris.Wrap(err, "learned: flush store file")
	}

	s.log.Debug("appended learned entries",
		zap.Int("added", added), zap.Int("skipped", skipped))
	return added, skipped, nil
}

// Close is a no-op; the file is opened per operation.
func (s *FileStore) Close() error {
	return nil
}

func formatLine(e Entry) string {
	ts := e.RecordedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	line := fmt.Sprintf("%s | %s | %d | %s", e.WineName, e.VintageKey, e.ItemNo, ts.Format(TimeLayout))
	if e.Note != "" {
		line += " | " + e.Note
	}
	return line + "\n"
}

// parseLine reads one store line. Comments, blanks, placeholder item
// numbers and anything else unparseable report ok=false.
func parseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Entry{}, false
	}

	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return Entry{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	itemNo, err := strconv.Atoi(parts[2])
	if err != nil {
		return Entry{}, false
	}

	entry := Entry{
		WineName:   parts[0],
		VintageKey: strings.ToUpper(parts[1]),
		ItemNo:     itemNo,
	}

	if len(parts) >= 4 {
		entry.RecordedAt, entry.Note = parseTimestampField(parts[3])
	}
	if len(parts) >= 5 && entry.Note == "" {
		entry.Note = parts[4]
	}

	return entry, true
}

// parseTimestampField reads the fourth field, which older files render as
// "2024-01-02 15:04:05 (manual correction)" with the note glued on.
func parseTimestampField(field string) (time.Time, string) {
	if t, err := time.Parse(TimeLayout, field); err == nil {
		return t, ""
	}
	if len(field) > len(TimeLayout) {
		if t, err := time.Parse(TimeLayout, field[:len(TimeLayout)]); err == nil {
			return t, strings.TrimSpace(field[len(TimeLayout):])
		}
	}
	return time.Time{}, field
}
