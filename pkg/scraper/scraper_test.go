package scraper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sriscraper/pkg/config"
	scrapererrors "sriscraper/pkg/errors"
	"sriscraper/pkg/journal"
	"sriscraper/pkg/logger"
	"sriscraper/pkg/storage"
	"sriscraper/pkg/ui"
)

// fakeBrowser simulates the portal: it serves fixture HTML pages and,
// on a download click, writes a file into the download directory the
// way Chrome would.
type fakeBrowser struct {
	pages       []string
	pageIdx     int
	downloadDir string

	missing  map[string]bool
	inactive map[string]bool

	clicked        []string
	nextClicks     int
	closed         bool
	downloadSerial int
}

func (f *fakeBrowser) Navigate(url string) error { return nil }

func (f *fakeBrowser) PageHTML() (string, error) {
	return f.pages[f.pageIdx], nil
}

func (f *fakeBrowser) ElementActionable(id string) (bool, error) {
	if f.missing[id] {
		return false, scrapererrors.New(scrapererrors.ErrorTypeElementNotFound, "element "+id+" not found")
	}
	if f.inactive[id] {
		return false, nil
	}
	return true, nil
}

func (f *fakeBrowser) ClickID(id string) error {
	if f.missing[id] {
		return scrapererrors.New(scrapererrors.ErrorTypeElementNotFound, "element "+id+" not found")
	}
	f.clicked = append(f.clicked, id)

	ext := ".pdf"
	if strings.HasSuffix(id, "lnkXml") {
		ext = ".xml"
	}
	f.downloadSerial++
	name := fmt.Sprintf("comprobante_%d%s", f.downloadSerial, ext)
	return os.WriteFile(filepath.Join(f.downloadDir, name), []byte("contents"), 0644)
}

func (f *fakeBrowser) ClickNext(selector, disabledClass string) (bool, error) {
	f.nextClicks++
	if f.pageIdx+1 < len(f.pages) {
		f.pageIdx++
		return true, nil
	}
	return false, nil
}

func (f *fakeBrowser) Close() { f.closed = true }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Browser.DownloadDir = filepath.Join(base, "downloads")
	cfg.Output.BaseDirectory = filepath.Join(base, "out")
	cfg.Timing.DownloadPollInterval = time.Millisecond
	cfg.Timing.DownloadTimeout = 100 * time.Millisecond
	cfg.Timing.TriggerPause = 0
	cfg.Timing.RowPause = 0
	cfg.Timing.PageSettle = 0
	require.NoError(t, os.MkdirAll(cfg.Browser.DownloadDir, 0755))
	return cfg
}

func newTestScraper(t *testing.T, cfg *config.Config, fb *fakeBrowser, operatorInput string) *Scraper {
	t.Helper()
	fb.downloadDir = cfg.Browser.DownloadDir

	org, err := storage.NewOrganizer(
		cfg.Browser.DownloadDir, cfg.PDFDir(), cfg.XMLDir(),
		cfg.Timing.RecentWindow, logger.NewNopLogger(),
	)
	require.NoError(t, err)

	prompter := ui.NewPrompterWithStreams(strings.NewReader(operatorInput), &bytes.Buffer{})
	return New(cfg, fb, org, prompter, logger.NewNopLogger())
}

func receiptRow(index int, invoice string) string {
	return fmt.Sprintf(`<tr>
		<td>01/01/2026</td><td>PROVEEDOR</td><td>%s</td>
		<td><a id="frmPrincipal:tablaCompRecibidos:%d:lnkXml">XML</a></td>
		<td><a id="frmPrincipal:tablaCompRecibidos:%d:lnkPdf">PDF</a></td>
	</tr>`, invoice, index, index)
}

func receiptsPage(rows string, nextEnabled bool) string {
	paginator := `<span class="ui-paginator-next ui-state-disabled">Next</span>`
	if nextEnabled {
		paginator = `<span class="ui-paginator-next">Next</span>`
	}
	return `<html><body><table><tbody>` + rows + `</tbody></table>` + paginator + `</body></html>`
}

// Session against a single simulated page with rows 5, 7 and 9: both
// links enabled, distinct invoice numbers. Expect six files split 3/3
// across the category folders, each named after its invoice number.
func TestRunSinglePage(t *testing.T) {
	cfg := testConfig(t)
	page := receiptsPage(
		receiptRow(5, "001-001-000000005")+
			receiptRow(7, "001-001-000000007")+
			receiptRow(9, "001-001-000000009"),
		false,
	)
	fb := &fakeBrowser{pages: []string{page}}

	// Enter (login), Enter (multi-download prompt), n (stop)
	s := newTestScraper(t, cfg, fb, "\n\nn\n")

	journalPath := filepath.Join(cfg.Output.BaseDirectory, "session.json")
	s.SetJournal(journal.New(journalPath, logger.NewNopLogger()))

	sum, err := s.Run(context.Background(), cfg.Portal.StartURL)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.PagesProcessed)
	assert.Equal(t, 3, sum.PDFFiles)
	assert.Equal(t, 3, sum.XMLFiles)
	assert.Len(t, fb.clicked, 6)

	for _, invoice := range []string{"001-001-000000005", "001-001-000000007", "001-001-000000009"} {
		assert.FileExists(t, filepath.Join(cfg.PDFDir(), invoice+".pdf"))
		assert.FileExists(t, filepath.Join(cfg.XMLDir(), invoice+".xml"))
	}

	// Download dir is drained
	entries, err := os.ReadDir(cfg.Browser.DownloadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Journal records every organized file
	session, err := journal.New(journalPath, logger.NewNopLogger()).Load()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Len(t, session.Entries, 6)
	assert.Equal(t, cfg.Portal.StartURL, session.StartURL)
}

func TestRunPaginates(t *testing.T) {
	cfg := testConfig(t)
	fb := &fakeBrowser{pages: []string{
		receiptsPage(receiptRow(0, "FIRST-PAGE-DOC"), true),
		receiptsPage(receiptRow(0, "SECOND-PAGE-DOC"), false),
	}}

	// Enter, Enter, y (next page), n (stop)
	s := newTestScraper(t, cfg, fb, "\n\ny\nn\n")

	sum, err := s.Run(context.Background(), cfg.Portal.StartURL)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.PagesProcessed)
	assert.Equal(t, 1, fb.nextClicks)
	assert.FileExists(t, filepath.Join(cfg.XMLDir(), "FIRST-PAGE-DOC.xml"))
	assert.FileExists(t, filepath.Join(cfg.XMLDir(), "SECOND-PAGE-DOC.xml"))
}

func TestRunStopsWhenPaginatorDisabled(t *testing.T) {
	cfg := testConfig(t)
	fb := &fakeBrowser{pages: []string{
		receiptsPage(receiptRow(0, "ONLY-DOC"), false),
	}}

	// Operator asks for the next page, but the control is disabled
	s := newTestScraper(t, cfg, fb, "\n\ny\n")

	sum, err := s.Run(context.Background(), cfg.Portal.StartURL)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.PagesProcessed)
	// The disabled control is never clicked
	assert.Equal(t, 0, fb.nextClicks)
}

func TestRunRetrySamePage(t *testing.T) {
	cfg := testConfig(t)
	fb := &fakeBrowser{pages: []string{
		receiptsPage(receiptRow(0, "RETRIED-DOC"), false),
	}}

	// Enter, Enter, r (retry), n (stop)
	s := newTestScraper(t, cfg, fb, "\n\nr\nn\n")

	sum, err := s.Run(context.Background(), cfg.Portal.StartURL)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.PagesProcessed)
	// The second pass produced collision-suffixed copies, not overwrites
	assert.FileExists(t, filepath.Join(cfg.XMLDir(), "RETRIED-DOC.xml"))
	assert.FileExists(t, filepath.Join(cfg.XMLDir(), "RETRIED-DOC_1.xml"))
}

func TestRunEmptyPage(t *testing.T) {
	cfg := testConfig(t)
	fb := &fakeBrowser{pages: []string{receiptsPage("", false)}}

	s := newTestScraper(t, cfg, fb, "\nn\n")

	sum, err := s.Run(context.Background(), cfg.Portal.StartURL)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.PagesProcessed)
	assert.Equal(t, 0, sum.PDFFiles)
	assert.Equal(t, 0, sum.XMLFiles)
	assert.Empty(t, fb.clicked)
}

func TestRunMissingLinkIsSoftFailure(t *testing.T) {
	cfg := testConfig(t)
	fb := &fakeBrowser{
		pages: []string{receiptsPage(receiptRow(4, "PARTIAL-DOC"), false)},
		missing: map[string]bool{
			"frmPrincipal:tablaCompRecibidos:4:lnkPdf": true,
		},
	}

	s := newTestScraper(t, cfg, fb, "\n\nn\n")

	sum, err := s.Run(context.Background(), cfg.Portal.StartURL)
	require.NoError(t, err)

	// XML still downloaded and organized; the row counts as successful
	assert.Equal(t, 1, sum.XMLFiles)
	assert.Equal(t, 0, sum.PDFFiles)
	assert.FileExists(t, filepath.Join(cfg.XMLDir(), "PARTIAL-DOC.xml"))
}

func TestRunDisabledLinkSkipped(t *testing.T) {
	cfg := testConfig(t)
	fb := &fakeBrowser{
		pages: []string{receiptsPage(receiptRow(2, "INACTIVE-DOC"), false)},
		inactive: map[string]bool{
			"frmPrincipal:tablaCompRecibidos:2:lnkXml": true,
			"frmPrincipal:tablaCompRecibidos:2:lnkPdf": true,
		},
	}

	s := newTestScraper(t, cfg, fb, "\n\nn\n")

	sum, err := s.Run(context.Background(), cfg.Portal.StartURL)
	require.NoError(t, err)

	assert.Empty(t, fb.clicked)
	assert.Equal(t, 0, sum.PDFFiles+sum.XMLFiles)
}

func TestRunContextCancel(t *testing.T) {
	cfg := testConfig(t)
	fb := &fakeBrowser{pages: []string{receiptsPage(receiptRow(0, "DOC"), false)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScraper(t, cfg, fb, "\n")

	sum, err := s.Run(ctx, cfg.Portal.StartURL)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.PagesProcessed)
}

func TestRunSyntheticInvoiceName(t *testing.T) {
	cfg := testConfig(t)
	// Row with an empty invoice cell falls back to documento_<index>
	row := `<tr><td></td><td></td><td> </td>
		<td><a id="frmPrincipal:tablaCompRecibidos:6:lnkXml">XML</a></td>
		<td><a id="frmPrincipal:tablaCompRecibidos:6:lnkPdf">PDF</a></td></tr>`
	fb := &fakeBrowser{pages: []string{receiptsPage(row, false)}}

	s := newTestScraper(t, cfg, fb, "\n\nn\n")

	_, err := s.Run(context.Background(), cfg.Portal.StartURL)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cfg.XMLDir(), "documento_6.xml"))
	assert.FileExists(t, filepath.Join(cfg.PDFDir(), "documento_6.pdf"))
}
