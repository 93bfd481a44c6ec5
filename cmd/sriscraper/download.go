package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"sriscraper/pkg/browser"
	"sriscraper/pkg/config"
	"sriscraper/pkg/journal"
	"sriscraper/pkg/logger"
	"sriscraper/pkg/scraper"
	"sriscraper/pkg/storage"
	"sriscraper/pkg/ui"
)

var (
	// Download command flags
	startURL        string
	outputDir       string
	downloadDir     string
	headless        bool
	downloadTimeout int
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Open the portal and run an interactive download session",
	Long: `Open a browser on the SRI portal and run an interactive download session.

The session is operator-paced:
  1. A browser window opens on the portal login page.
  2. You log in by hand and navigate to the received-documents table.
  3. Press Enter; every row on the page is downloaded (XML and PDF).
  4. After each page you choose: next page (y), stop (n), or retry (r).

Downloaded files are moved out of the browser's download directory and
into pdf/ and xml/ folders, renamed after their invoice numbers.`,
	Example: `  # Run with default settings
  sriscraper download

  # Save documents under a specific directory
  sriscraper download --output ~/Documents/sri

  # Use a longer per-file download timeout
  sriscraper download --download-timeout 60`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runDownload(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	// Local flags for download command
	downloadCmd.Flags().StringVar(&startURL, "url", "", "portal URL to open first")
	downloadCmd.Flags().StringVarP(&outputDir, "output", "o", "", "base directory for organized pdf/ and xml/ folders")
	downloadCmd.Flags().StringVar(&downloadDir, "download-dir", "", "directory the browser downloads into")
	downloadCmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a window (login must already be scripted)")
	downloadCmd.Flags().IntVar(&downloadTimeout, "download-timeout", 15, "per-file download timeout in seconds")
}

func runDownload(cmd *cobra.Command, args []string) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if startURL != "" {
		flags["url"] = startURL
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if downloadDir != "" {
		flags["download-dir"] = downloadDir
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if downloadTimeout != 15 {
		flags["download-timeout"] = time.Duration(downloadTimeout) * time.Second
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("SRI Scraper starting")

	// The browser refuses to download into a directory that does not exist
	if err := os.MkdirAll(cfg.Browser.DownloadDir, 0755); err != nil {
		ui.PrintError("Failed to create download directory", err.Error())
		os.Exit(1)
	}

	organizer, err := storage.NewOrganizer(
		cfg.Browser.DownloadDir, cfg.PDFDir(), cfg.XMLDir(),
		cfg.Timing.RecentWindow, logger.GetLogger(),
	)
	if err != nil {
		ui.PrintError("Failed to prepare output directories", err.Error())
		os.Exit(1)
	}

	// Ctrl+C ends the session after the current row; the summary still prints
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := browser.NewSession(cfg, logger.GetLogger())
	if err := session.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start browser")
		ui.PrintError("Failed to start browser", err.Error())
		os.Exit(1)
	}
	defer session.Close()

	s := scraper.New(cfg, session, organizer, ui.NewPrompter(), logger.GetLogger())
	s.SetJournal(journal.New(filepath.Join(cfg.Output.BaseDirectory, "session.json"), logger.GetLogger()))

	summary, err := s.Run(ctx, cfg.Portal.StartURL)
	if err != nil {
		// The portal could not even be opened; everything after that is
		// reported in the summary instead of an exit status.
		logger.WithError(err).Error("Session failed")
		ui.PrintError("Session failed", err.Error())
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"pages": summary.PagesProcessed,
		"pdf":   summary.PDFFiles,
		"xml":   summary.XMLFiles,
	}).Info("Session finished")
}
