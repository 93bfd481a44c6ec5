package journal

import (
	"os"
	"path/filepath"
	"testing"

	"sriscraper/pkg/logger"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	j := New(path, logger.NewNopLogger())
	j.Start("https://example.com/portal")
	j.Record("001-001-000000123", "xml", "/out/xml/001-001-000000123.xml", 1)
	j.Record("001-001-000000123", "pdf", "/out/pdf/001-001-000000123.pdf", 1)
	j.Record("001-001-000000124", "xml", "/out/xml/001-001-000000124.xml", 2)

	if err := j.Save(); err != nil {
		t.Fatalf("Failed to save journal: %v", err)
	}

	loaded, err := New(path, logger.NewNopLogger()).Load()
	if err != nil {
		t.Fatalf("Failed to load journal: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected a session, got nil")
	}

	if loaded.StartURL != "https://example.com/portal" {
		t.Errorf("Unexpected start URL: %s", loaded.StartURL)
	}
	if len(loaded.Entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(loaded.Entries))
	}
	if loaded.Entries[0].Invoice != "001-001-000000123" {
		t.Errorf("Unexpected first invoice: %s", loaded.Entries[0].Invoice)
	}
	if loaded.Entries[2].Page != 2 {
		t.Errorf("Expected third entry on page 2, got %d", loaded.Entries[2].Page)
	}
}

func TestLoadMissingFile(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "absent.json"), logger.NewNopLogger())

	session, err := j.Load()
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if session != nil {
		t.Error("Expected nil session for missing file")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path, logger.NewNopLogger()).Load(); err == nil {
		t.Error("Expected error for corrupt journal")
	}
}

func TestCount(t *testing.T) {
	j := New(filepath.Join(t.TempDir(), "session.json"), logger.NewNopLogger())
	j.Start("")
	j.Record("A", "xml", "a.xml", 1)
	j.Record("A", "pdf", "a.pdf", 1)
	j.Record("B", "xml", "b.xml", 1)

	if got := j.Count("xml"); got != 2 {
		t.Errorf("Expected 2 xml entries, got %d", got)
	}
	if got := j.Count("pdf"); got != 1 {
		t.Errorf("Expected 1 pdf entry, got %d", got)
	}
}

func TestSaveWithoutSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	j := New(path, logger.NewNopLogger())

	if err := j.Save(); err != nil {
		t.Fatalf("Expected no-op save, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected no file to be written without a session")
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	j := New(path, logger.NewNopLogger())
	j.Start("url")
	j.Record("A", "xml", "a.xml", 1)
	if err := j.Save(); err != nil {
		t.Fatal(err)
	}

	j.Record("B", "pdf", "b.pdf", 1)
	if err := j.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := New(path, logger.NewNopLogger()).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Entries) != 2 {
		t.Errorf("Expected 2 entries after second save, got %d", len(loaded.Entries))
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file left behind after save")
	}
}
