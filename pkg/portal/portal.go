package portal

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DocumentRow is one downloadable entry of the receipts table, identified
// by the numeric index embedded in its link element ids.
type DocumentRow struct {
	Index     int
	Invoice   string
	Synthetic bool
}

// Table knows the markup the SRI receipts page exposes: the link id naming
// pattern, the paginator selector and the column holding the invoice number.
type Table struct {
	Prefix        string
	XMLSuffix     string
	PDFSuffix     string
	NextSelector  string
	DisabledClass string
	InvoiceColumn int
}

// NewTable builds a Table for the given link id pattern
func NewTable(prefix, xmlSuffix, pdfSuffix, nextSelector, disabledClass string, invoiceColumn int) *Table {
	return &Table{
		Prefix:        prefix,
		XMLSuffix:     xmlSuffix,
		PDFSuffix:     pdfSuffix,
		NextSelector:  nextSelector,
		DisabledClass: disabledClass,
		InvoiceColumn: invoiceColumn,
	}
}

// XMLLinkID returns the element id of the XML download link for a row index
func (t *Table) XMLLinkID(index int) string {
	return fmt.Sprintf("%s:%d:%s", t.Prefix, index, t.XMLSuffix)
}

// PDFLinkID returns the element id of the PDF download link for a row index
func (t *Table) PDFLinkID(index int) string {
	return fmt.Sprintf("%s:%d:%s", t.Prefix, index, t.PDFSuffix)
}

// SyntheticName returns the placeholder document name for a row whose
// invoice number could not be read
func SyntheticName(index int) string {
	return fmt.Sprintf("documento_%d", index)
}

// ParseLinkIndex extracts the row index from a link element id such as
// "frmPrincipal:tablaCompRecibidos:50:lnkXml". The second ':'-separated
// segment after the table name must be numeric; anything else is rejected.
func ParseLinkIndex(id string) (int, bool) {
	parts := strings.Split(id, ":")
	if len(parts) < 3 {
		return 0, false
	}
	seg := parts[2]
	if seg == "" {
		return 0, false
	}
	index := 0
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, false
		}
		index = index*10 + int(r-'0')
	}
	return index, true
}

// ExtractRows scans the rendered page for XML download links and returns
// the document rows in DOM order. Indices are not necessarily contiguous
// or sorted; the portal may skip them. Malformed link ids are skipped.
// An empty result means there are no documents on the page.
func (t *Table) ExtractRows(html string) ([]DocumentRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	selector := fmt.Sprintf("a[id*='%s'][id*='%s']", t.Prefix, t.XMLSuffix)

	var rows []DocumentRow
	doc.Find(selector).Each(func(_ int, link *goquery.Selection) {
		id, ok := link.Attr("id")
		if !ok {
			return
		}
		index, ok := ParseLinkIndex(id)
		if !ok {
			return
		}

		row := DocumentRow{Index: index}

		// Invoice number lives in a fixed column of the ancestor row;
		// fall back to a synthetic name when the cell is missing or empty.
		invoice := strings.TrimSpace(link.Closest("tr").Find("td").Eq(t.InvoiceColumn).Text())
		if invoice != "" {
			row.Invoice = invoice
		} else {
			row.Invoice = SyntheticName(index)
			row.Synthetic = true
		}

		rows = append(rows, row)
	})

	return rows, nil
}

// HasNextPage reports whether an enabled "next page" control exists.
// A control carrying the disabled state class is never considered
// clickable; absence of any control means there are no more pages.
func (t *Table) HasNextPage(html string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, fmt.Errorf("failed to parse page: %w", err)
	}

	enabled := false
	doc.Find(t.NextSelector).EachWithBreak(func(_ int, next *goquery.Selection) bool {
		classes, _ := next.Attr("class")
		if !strings.Contains(classes, t.DisabledClass) {
			enabled = true
			return false
		}
		return true
	})

	return enabled, nil
}
