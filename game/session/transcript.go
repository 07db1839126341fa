package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dungeonforge/questengine/game/engine"
)

// TranscriptWriter receives every committed turn for audit and replay
// review. It is not a durability layer: sessions are never restored from
// transcripts, and a failed append never fails the commit.
type TranscriptWriter interface {
	// Append records one committed turn for a session
	Append(sessionID string, record engine.TurnRecord) error

	// Read returns all recorded turns for a session, oldest first
	Read(sessionID string) ([]engine.TurnRecord, error)
}

// NopTranscript discards all turns. Used when transcripts are disabled.
type NopTranscript struct{}

func (NopTranscript) Append(string, engine.TurnRecord) error   { return nil }
func (NopTranscript) Read(string) ([]engine.TurnRecord, error) { return nil, nil }

// FileTranscript appends committed turns to one JSONL file per session
type FileTranscript struct {
	dir string
	mu  sync.Mutex
}

// NewFileTranscript creates a file-based transcript writer rooted at dir
func NewFileTranscript(dir string) (*FileTranscript, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}
	return &FileTranscript{dir: dir}, nil
}

// Append writes one JSON line for the committed turn
func (t *FileTranscript) Append(sessionID string, record engine.TurnRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal turn record: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.filePath(sessionID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open transcript file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write transcript line: %w", err)
	}
	return nil
}

// Read loads all turns recorded for a session
func (t *FileTranscript) Read(sessionID string) ([]engine.TurnRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var records []engine.TurnRecord
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var record engine.TurnRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("failed to parse transcript line: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (t *FileTranscript) filePath(sessionID string) string {
	// Session IDs are UUIDs, but sanitize anyway before touching the filesystem
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, sessionID)
	return filepath.Join(t.dir, safe+".jsonl")
}
