// Package journal persists a per-session record of downloaded
// documents as a JSON file next to the organized output.
//
// Each organized file produces one entry (invoice number, category,
// final path, page). The file is rewritten atomically after every
// page, so an interrupted run still leaves an accurate record of what
// was downloaded up to that point.
package journal
