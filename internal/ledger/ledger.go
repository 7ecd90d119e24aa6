// Package ledger implements the append-only per-agent transaction log with
// daily file rotation. Each agent owns one directory subtree; no two agents
// ever write to the same file.
package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DateFormat is the UTC calendar-day layout used for file names.
const DateFormat = "2006-01-02"

// Ledger writes and reads one agent's daily transaction files under
// <base>/transactions/<agent>/<YYYY-MM-DD>.jsonl.
type Ledger struct {
	agent  string
	dir    string
	logger zerolog.Logger
	now    func() time.Time
}

// Open binds a ledger to one agent's subtree. The directory is created
// lazily on first append.
func Open(baseDir, agent string, logger zerolog.Logger) *Ledger {
	return &Ledger{
		agent:  agent,
		dir:    filepath.Join(baseDir, "transactions", agent),
		logger: logger.With().Str("component", "ledger").Str("agent", agent).Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Agent returns the agent this ledger belongs to.
func (l *Ledger) Agent() string {
	return l.agent
}

// Append writes one record to the current UTC day's file, stamping a
// timestamp if absent. The record is never modified afterwards.
func (l *Ledger) Append(record Record) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("ensure ledger dir: %w", err)
	}

	now := l.now()
	if record.Timestamp.IsZero() {
		record.Timestamp = now
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	path := filepath.Join(l.dir, now.Format(DateFormat)+".jsonl")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	l.logger.Debug().Str("file", path).Str("type", record.Type).Msg("record appended")
	return nil
}

// Read returns all records for the given date (YYYY-MM-DD). A missing file
// yields an empty slice; malformed lines are skipped with a warning.
func (l *Ledger) Read(date string) ([]Record, error) {
	path := filepath.Join(l.dir, date+".jsonl")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			l.logger.Warn().Err(err).Str("file", path).Int("line", lineNo).Msg("skipping malformed ledger line")
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read ledger file: %w", err)
	}

	return records, nil
}

// CountToday returns the number of records already written for the current
// UTC day. Used to enforce per-agent daily trade limits.
func (l *Ledger) CountToday() (int, error) {
	records, err := l.Read(l.now().Format(DateFormat))
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Today returns the current UTC date in ledger file format.
func Today() string {
	return time.Now().UTC().Format(DateFormat)
}
