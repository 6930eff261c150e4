package learned

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CorrectionsPrefix names review files written after a run and picked up by
// the corrections command.
const CorrectionsPrefix = "CORRECTIONS_NEEDED_"

// Placeholder item-number values a reviewer has not filled in yet.
var placeholderItemNos = map[string]bool{
	"YOUR_ITEM_NO_HERE": true,
	"PENDING":           true,
}

// ParseCorrections reads a hand-edited corrections file and returns the
// entries whose item numbers were actually filled in. Uncorrected or
// malformed lines are logged and skipped, never fatal; one bad line must
// not discard the reviewer's other work.
func ParseCorrections(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "learned: open corrections file")
	}
	defer f.Close()

	log := zap.L().With(zap.String("component", "learned"))

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if skipCorrectionLine(line) {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		name, vintage, rawItemNo := parts[0], parts[1], parts[2]
		if rawItemNo == "" || placeholderItemNos[strings.ToUpper(rawItemNo)] {
			log.Warn("skipping uncorrected entry",
				zap.String("wine", name), zap.String("vintage", vintage))
			continue
		}

		itemNo, err := strconv.Atoi(rawItemNo)
		if err != nil {
			log.Warn("skipping entry with invalid item number",
				zap.String("wine", name), zap.String("item_no", rawItemNo))
			continue
		}

		entries = append(entries, Entry{
			WineName:   name,
			VintageKey: strings.ToUpper(vintage),
			ItemNo:     itemNo,
			Note:       "manual correction",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "learned: read corrections file")
	}

	return entries, nil
}

// skipCorrectionLine filters the decoration the review file carries around
// its data lines: banners, instructions and the numbered context headers.
func skipCorrectionLine(line string) bool {
	if line == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "=") ||
		strings.HasPrefix(line, "-") {
		return true
	}
	if strings.HasPrefix(line, "[") && strings.Contains(line, "]") {
		return true
	}
	for _, marker := range []string{"INSTRUCTIONS", "Format:", "Generated:", "CORRECTIONS FILE"} {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// FindLatestCorrections returns the most recently modified corrections file
// in dir.
func FindLatestCorrections(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, CorrectionsPrefix+"*.txt"))
	if err != nil {
		return "", eris.Wrap(err, "learned: glob corrections files")
	}
	if len(matches) == 0 {
		return "", eris.Errorf("learned: no %s*.txt file in %s", CorrectionsPrefix, dir)
	}

	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).After(modTime(matches[j]))
	})
	return matches[0], nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
