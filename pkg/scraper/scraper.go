package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sriscraper/pkg/config"
	scrapererrors "sriscraper/pkg/errors"
	"sriscraper/pkg/journal"
	"sriscraper/pkg/logger"
	"sriscraper/pkg/poll"
	"sriscraper/pkg/portal"
	"sriscraper/pkg/storage"
	"sriscraper/pkg/ui"
)

// Scraper runs the operator-paced download session: one page at a time,
// one row at a time, with the operator deciding between pages.
type Scraper struct {
	browser   PortalBrowser
	organizer *storage.Organizer
	table     *portal.Table
	prompter  *ui.Prompter
	cfg       *config.Config
	logger    logger.Logger
	journal   *journal.Journal

	firstRowConfirmed bool
}

// Summary reports the terminal state of a session
type Summary struct {
	PagesProcessed int
	PDFFiles       int
	XMLFiles       int
	PDFDir         string
	XMLDir         string
}

// New creates a Scraper. The browser session and organizer are owned by
// the caller; the scraper only drives them.
func New(cfg *config.Config, b PortalBrowser, org *storage.Organizer, prompter *ui.Prompter, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		browser:   b,
		organizer: org,
		table: portal.NewTable(
			cfg.Portal.TablePrefix,
			cfg.Portal.XMLLinkSuffix,
			cfg.Portal.PDFLinkSuffix,
			cfg.Portal.NextSelector,
			cfg.Portal.DisabledClass,
			cfg.Portal.InvoiceColumn,
		),
		prompter: prompter,
		cfg:      cfg,
		logger:   log,
	}
}

// SetJournal attaches a session journal; every organized file is then
// recorded and the journal is saved after each page
func (s *Scraper) SetJournal(j *journal.Journal) {
	s.journal = j
}

// Run executes the whole session: navigate to the portal, wait for the
// operator to log in manually, then process pages until the operator
// stops, pagination ends or the context is cancelled. The summary is
// returned even when the run ends early.
func (s *Scraper) Run(ctx context.Context, startURL string) (*Summary, error) {
	ui.PrintInfo("PDF files will be saved to", s.organizer.PDFDir())
	ui.PrintInfo("XML files will be saved to", s.organizer.XMLDir())

	if err := s.browser.Navigate(startURL); err != nil {
		s.logger.WithError(err).Error("Failed to open portal")
		return s.summary(0), err
	}

	ui.PrintWarning("Please login manually and navigate to the documents page.")
	ui.PrintWarning("Make sure the table with documents is visible.")
	s.prompter.Confirm("Press Enter when ready to start downloading...")

	if s.journal != nil {
		s.journal.Start(startURL)
	}

	pageCount := 0

loop:
	for {
		if ctx.Err() != nil {
			ui.PrintWarning("Download interrupted by operator")
			break
		}

		pageCount++
		ui.PrintRule()
		ui.PrintHighlight(fmt.Sprintf("Processing page %d", pageCount))

		successful, total, err := s.processPage(ctx, pageCount)
		if err != nil {
			s.logger.WithError(err).WithField("page", pageCount).Error("Failed to process page")
			ui.PrintError("Error processing page", err)
		}
		logger.LogPageSummary(pageCount, successful, total)
		if s.journal != nil {
			if err := s.journal.Save(); err != nil {
				s.logger.WithError(err).Warn("Failed to save session journal")
			}
		}
		if total == 0 && err == nil {
			ui.PrintWarning("No document download links found on this page")
		} else if !ui.IsQuietMode() {
			fmt.Printf("Page complete: %d/%d documents processed successfully\n", successful, total)
		}

		if ctx.Err() != nil {
			ui.PrintWarning("Download interrupted by operator")
			break
		}

		switch s.prompter.ChoosePageAction() {
		case ui.ChoiceStop:
			break loop
		case ui.ChoiceRetry:
			continue
		case ui.ChoiceNext:
			more, err := s.nextPage(ctx)
			if err != nil {
				s.logger.WithError(err).Error("Failed to navigate to next page")
				ui.PrintError("Error navigating to next page", err)
				break loop
			}
			if !more {
				ui.PrintWarning("Next page control is disabled - no more pages")
				break loop
			}
		}
	}

	sum := s.summary(pageCount)
	s.printSummary(sum)
	return sum, nil
}

// processPage extracts the document rows of the current page and runs
// the download + organize sequence for each, returning the per-page
// success count. Zero rows is the non-fatal "no documents" outcome.
func (s *Scraper) processPage(ctx context.Context, page int) (successful, total int, err error) {
	html, err := s.browser.PageHTML()
	if err != nil {
		return 0, 0, err
	}

	rows, err := s.table.ExtractRows(html)
	if err != nil {
		return 0, 0, err
	}

	indices := make([]int, len(rows))
	for i, row := range rows {
		indices[i] = row.Index
	}
	s.logger.WithFields(map[string]interface{}{
		"count":   len(rows),
		"indices": indices,
	}).Info("Documents found on page")

	for _, row := range rows {
		if ctx.Err() != nil {
			return successful, len(rows), nil
		}
		if s.downloadRow(ctx, row, page) {
			successful++
		}
		s.pause(ctx, s.cfg.Timing.RowPause)
	}

	return successful, len(rows), nil
}

// downloadRow triggers the XML and PDF downloads of one row, waits for
// the browser to finish writing, and organizes the resulting files.
// Success means at least one file was both triggered and moved.
func (s *Scraper) downloadRow(ctx context.Context, row portal.DocumentRow, page int) bool {
	if row.Synthetic {
		s.logger.WithField("index", row.Index).Warn("Could not extract invoice number, using placeholder")
	}
	ui.PrintInfo("Document", row.Invoice)

	triggered := 0
	if s.triggerDownload(ctx, s.table.XMLLinkID(row.Index), "XML", row.Invoice) {
		triggered++
	}

	// Separate the two download-manager interactions
	s.pause(ctx, s.cfg.Timing.TriggerPause)

	if s.triggerDownload(ctx, s.table.PDFLinkID(row.Index), "PDF", row.Invoice) {
		triggered++
	}

	// The browser asks once per session whether the site may download
	// multiple files; the operator has to accept that by hand.
	if !s.firstRowConfirmed {
		s.firstRowConfirmed = true
		s.prompter.Confirm("Have you accepted the multiple downloads prompt? Press Enter to continue...")
	}

	if triggered == 0 {
		s.logger.WithField("invoice", row.Invoice).Warn("No files produced for this row")
		return false
	}

	// Let the final file write settle before scanning the download dir
	s.pause(ctx, s.cfg.Timing.TriggerPause)

	moved := s.organizer.OrganizeRecent(row.Invoice)
	if s.journal != nil {
		for _, m := range moved {
			s.journal.Record(row.Invoice, string(m.Category), m.Path, page)
		}
	}
	return len(moved) > 0
}

// triggerDownload clicks one download link if it is actionable and
// waits for the in-progress markers to clear. Every failure here is
// soft: the file type is reported unavailable and the row goes on.
func (s *Scraper) triggerDownload(ctx context.Context, id, fileType, invoice string) bool {
	actionable, err := s.browser.ElementActionable(id)
	if err != nil {
		if scrapererrors.IsType(err, scrapererrors.ErrorTypeElementNotFound) {
			logger.LogDocument(invoice, fileType, false, nil)
		} else {
			logger.LogDocument(invoice, fileType, false, err)
		}
		return false
	}
	if !actionable {
		s.logger.WithFields(map[string]interface{}{
			"invoice":   invoice,
			"file_type": fileType,
		}).Warn("Download link not available")
		return false
	}

	if err := s.browser.ClickID(id); err != nil {
		logger.LogDocument(invoice, fileType, false, err)
		return false
	}

	if err := s.waitForDownloads(ctx); err != nil {
		if errors.Is(err, poll.ErrTimeout) {
			logger.LogDocument(invoice, fileType, false,
				scrapererrors.New(scrapererrors.ErrorTypeTimeout, "download did not finish in time"))
		}
		return false
	}

	logger.LogDocument(invoice, fileType, true, nil)
	return true
}

// waitForDownloads polls the download directory until no in-progress
// marker files remain or the configured timeout elapses
func (s *Scraper) waitForDownloads(ctx context.Context) error {
	return poll.Until(ctx, poll.Config{
		Interval: s.cfg.Timing.DownloadPollInterval,
		Timeout:  s.cfg.Timing.DownloadTimeout,
	}, func() bool {
		return !s.organizer.DownloadsInProgress()
	})
}

// nextPage clicks the enabled "next page" control if one exists and
// waits a fixed delay for the page to render. A page whose paginator
// is absent or disabled ends the session normally.
func (s *Scraper) nextPage(ctx context.Context) (bool, error) {
	html, err := s.browser.PageHTML()
	if err != nil {
		return false, err
	}
	hasNext, err := s.table.HasNextPage(html)
	if err != nil {
		return false, err
	}
	if !hasNext {
		return false, nil
	}

	clicked, err := s.browser.ClickNext(s.cfg.Portal.NextSelector, s.cfg.Portal.DisabledClass)
	if err != nil {
		return false, err
	}
	if !clicked {
		return false, nil
	}

	s.pause(ctx, s.cfg.Timing.PageSettle)
	s.logger.Info("Navigated to next page")
	return true, nil
}

// pause sleeps for d unless the context ends first
func (s *Scraper) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Scraper) summary(pages int) *Summary {
	pdf, xml := s.organizer.CountFiles()
	return &Summary{
		PagesProcessed: pages,
		PDFFiles:       pdf,
		XMLFiles:       xml,
		PDFDir:         s.organizer.PDFDir(),
		XMLDir:         s.organizer.XMLDir(),
	}
}

func (s *Scraper) printSummary(sum *Summary) {
	ui.PrintRule()
	ui.PrintHighlight("DOWNLOAD SUMMARY")
	ui.PrintInfo("Pages processed", fmt.Sprintf("%d", sum.PagesProcessed))
	ui.PrintInfo("PDF files", fmt.Sprintf("%d in %s", sum.PDFFiles, sum.PDFDir))
	ui.PrintInfo("XML files", fmt.Sprintf("%d in %s", sum.XMLFiles, sum.XMLDir))
	if s.journal != nil {
		ui.PrintInfo("Session journal", s.journal.Path())
	}
	ui.PrintSuccess("Download session completed")
}
