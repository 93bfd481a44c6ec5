// Package scraper drives the operator-paced download session against
// the SRI receipts portal.
//
// The session is a strictly sequential loop with these states:
//
//	AWAITING_LOGIN -> PROCESSING_PAGE -> AWAITING_OPERATOR_CHOICE
//	                                      |-> NEXT_PAGE (back to PROCESSING_PAGE)
//	                                      |-> RETRY_PAGE (back to PROCESSING_PAGE)
//	                                      |-> STOPPED
//
// Authentication happens manually in the browser window before any
// scraping begins; the scraper blocks on operator confirmation. After
// each page the operator chooses next, retry or stop; unrecognized
// input stops the session. Reprocessing a page is always an operator
// decision, never automatic.
//
// Per row, the scraper clicks the XML and PDF download links (when
// present and enabled), waits for Chrome's in-progress download markers
// to clear, and hands the freshly written files to the storage
// organizer. Every per-file failure is soft; only browser launch and
// navigation errors end the run.
package scraper
