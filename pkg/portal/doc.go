// Package portal contains the pure DOM logic of the SRI receipts page:
// extracting document rows and their invoice numbers from the rendered
// table HTML, building per-row download link ids, and deciding whether
// the paginator has an enabled "next page" control.
//
// The package never talks to a browser; callers render the page (see
// pkg/browser) and hand the HTML in, which keeps every markup decision
// testable against fixture documents.
package portal
