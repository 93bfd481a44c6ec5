package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"sriscraper/pkg/logger"
)

// Entry records one file that was downloaded and organized
type Entry struct {
	Invoice  string    `json:"invoice"`
	Category string    `json:"category"`
	File     string    `json:"file"`
	Page     int       `json:"page"`
	SavedAt  time.Time `json:"saved_at"`
}

// Session is the persisted journal of one download run
type Session struct {
	StartURL  string    `json:"start_url"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Entries   []Entry   `json:"entries"`
	Version   int       `json:"version"`
}

// Journal appends per-document records to a JSON file so the operator
// can see afterwards which invoices came down and when. The file is
// rewritten atomically on every save; a crashed run leaves the last
// complete state behind.
type Journal struct {
	path    string
	session *Session
	logger  logger.Logger
}

// New creates a journal backed by the given file path
func New(path string, log logger.Logger) *Journal {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Journal{
		path:   path,
		logger: log,
	}
}

// Start begins a new session, carrying over nothing from previous runs
func (j *Journal) Start(startURL string) {
	now := time.Now()
	j.session = &Session{
		StartURL:  startURL,
		StartedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Load reads a previous session from disk. A missing file is not an
// error; it just means there is nothing to show.
func (j *Journal) Load() (*Session, error) {
	file, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	defer file.Close()

	var session Session
	if err := json.NewDecoder(file).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode journal: %w", err)
	}

	return &session, nil
}

// Record appends one organized file to the current session
func (j *Journal) Record(invoice, category, file string, page int) {
	if j.session == nil {
		j.Start("")
	}
	j.session.Entries = append(j.session.Entries, Entry{
		Invoice:  invoice,
		Category: category,
		File:     file,
		Page:     page,
		SavedAt:  time.Now(),
	})
}

// Count returns the number of recorded files in the given category
func (j *Journal) Count(category string) int {
	if j.session == nil {
		return 0
	}
	n := 0
	for _, e := range j.session.Entries {
		if e.Category == category {
			n++
		}
	}
	return n
}

// Path returns the journal file location
func (j *Journal) Path() string {
	return j.path
}

// Save writes the session to disk atomically
func (j *Journal) Save() error {
	if j.session == nil {
		return nil
	}
	j.session.UpdatedAt = time.Now()

	tempPath := j.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary journal file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(j.session); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode journal: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync journal file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close journal file: %w", err)
	}

	if err := os.Rename(tempPath, j.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace journal file: %w", err)
	}

	j.logger.DebugWithFields("Journal saved", map[string]interface{}{
		"path":    j.path,
		"entries": len(j.session.Entries),
	})

	return nil
}
