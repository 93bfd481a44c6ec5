// Package storage organizes downloaded tax documents on disk.
//
// The browser drops every download into its default download directory;
// the Organizer picks up the PDF/XML files written during the current
// row's download window, renames them after the sanitized invoice
// number and moves them into per-category folders.
//
// Invariants:
//   - Destination filenames within a category directory are unique;
//     collisions are resolved with an incrementing numeric suffix and
//     an existing file is never overwritten.
//   - Only files modified within the configured recent window count as
//     part of the current download.
//
// Usage:
//
//	org, err := storage.NewOrganizer(downloads, pdfDir, xmlDir, 20*time.Second, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	moved := org.OrganizeRecent("001-002-000123456")
package storage
