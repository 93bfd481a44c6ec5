package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"sriscraper/pkg/logger"
)

// Category identifies the destination folder of an organized file
type Category string

const (
	CategoryPDF Category = "pdf"
	CategoryXML Category = "xml"
)

// MovedFile records one file moved out of the browser's download directory
type MovedFile struct {
	Category Category
	Path     string
}

// Organizer moves freshly downloaded PDF/XML files from the browser's
// download directory into per-category output folders, naming them after
// the row's invoice number.
type Organizer struct {
	downloadDir  string
	pdfDir       string
	xmlDir       string
	recentWindow time.Duration
	logger       logger.Logger
}

// facturasLabel matches the two label substrings the portal sometimes
// renders without a separating space
var facturasLabel = regexp.MustCompile(`(Facturas)(Number)`)

// NewOrganizer creates an Organizer and ensures both category directories exist
func NewOrganizer(downloadDir, pdfDir, xmlDir string, recentWindow time.Duration, log logger.Logger) (*Organizer, error) {
	for _, dir := range []string{pdfDir, xmlDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	if log == nil {
		log = logger.GetLogger()
	}

	return &Organizer{
		downloadDir:  downloadDir,
		pdfDir:       pdfDir,
		xmlDir:       xmlDir,
		recentWindow: recentWindow,
		logger:       log,
	}, nil
}

// SanitizeName reduces an invoice number to a filesystem-safe name.
// Only letters, digits, hyphens, underscores and spaces survive; the
// "FacturasNumber" label adjacency gets a space inserted; an input that
// sanitizes to nothing maps to a timestamp-based placeholder.
func SanitizeName(invoice string) string {
	var b strings.Builder
	for _, r := range invoice {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == ' ' {
			b.WriteRune(r)
		}
	}

	clean := strings.TrimSpace(b.String())
	clean = facturasLabel.ReplaceAllString(clean, "$1 $2")
	if clean == "" {
		clean = fmt.Sprintf("documento_%d", time.Now().Unix())
	}
	return clean
}

// OrganizeRecent moves every PDF/XML file modified within the recent
// window from the download directory into its category folder, named
// after the sanitized invoice number. Name collisions are resolved with
// an incrementing suffix; existing files are never overwritten.
// Filesystem errors are logged and reported as zero files moved.
func (o *Organizer) OrganizeRecent(invoice string) []MovedFile {
	entries, err := os.ReadDir(o.downloadDir)
	if err != nil {
		o.logger.WithError(err).WithField("dir", o.downloadDir).Error("Failed to scan download directory")
		return nil
	}

	cleanName := SanitizeName(invoice)
	now := time.Now()

	var moved []MovedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		var destDir string
		var category Category
		switch ext {
		case ".pdf":
			destDir = o.pdfDir
			category = CategoryPDF
		case ".xml":
			destDir = o.xmlDir
			category = CategoryXML
		default:
			continue
		}

		info, err := entry.Info()
		if err != nil {
			o.logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to stat downloaded file")
			continue
		}
		if now.Sub(info.ModTime()) >= o.recentWindow {
			continue
		}

		src := filepath.Join(o.downloadDir, entry.Name())
		dest := o.resolveCollision(filepath.Join(destDir, cleanName+ext))

		if err := os.Rename(src, dest); err != nil {
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"source":      src,
				"destination": dest,
			}).Error("Failed to move downloaded file")
			continue
		}

		moved = append(moved, MovedFile{Category: category, Path: dest})
		o.logger.WithFields(map[string]interface{}{
			"category": string(category),
			"file":     filepath.Base(dest),
		}).Info("File organized")
	}

	return moved
}

// resolveCollision returns dest if free, otherwise the first
// "<stem>_N<ext>" variant that does not collide with an existing file
func (o *Organizer) resolveCollision(dest string) string {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}

	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// DownloadsInProgress reports whether the browser still has in-progress
// download marker files in the download directory
func (o *Organizer) DownloadsInProgress() bool {
	markers, err := filepath.Glob(filepath.Join(o.downloadDir, "*.crdownload"))
	if err != nil {
		return false
	}
	return len(markers) > 0
}

// CountFiles returns the number of organized files per category
func (o *Organizer) CountFiles() (pdf int, xml int) {
	pdf = countByExt(o.pdfDir, ".pdf")
	xml = countByExt(o.xmlDir, ".xml")
	return pdf, xml
}

func countByExt(dir, ext string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			count++
		}
	}
	return count
}

// PDFDir returns the PDF category directory
func (o *Organizer) PDFDir() string {
	return o.pdfDir
}

// XMLDir returns the XML category directory
func (o *Organizer) XMLDir() string {
	return o.xmlDir
}

// DownloadDir returns the browser download directory being watched
func (o *Organizer) DownloadDir() string {
	return o.downloadDir
}
