package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"sriscraper/pkg/config"
	"sriscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage SRI Scraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'sriscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "sriscraper.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# SRI Scraper Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with SRISCRAPER_
# For example: SRISCRAPER_START_URL, SRISCRAPER_OUTPUT_DIR

# Portal configuration
portal:
  # URL the browser opens first
  start_url: "https://srienlinea.sri.gob.ec/comprobantes-electronicos-internet/pages/consultas/recibidos/comprobantesRecibidos.jsf"

  # id prefix shared by every download link in the documents table
  table_prefix: "frmPrincipal:tablaCompRecibidos"

  # id suffixes of the per-row download links
  xml_link_suffix: "lnkXml"
  pdf_link_suffix: "lnkPdf"

  # Pagination control
  next_selector: ".ui-paginator-next"
  disabled_class: "ui-state-disabled"

  # Zero-based table column that holds the invoice number
  invoice_column: 2

# Browser configuration
browser:
  # Directory the browser downloads into before files are organized
  download_dir: "./descargas"

  # Run without a window. Login is manual, so this is only useful
  # when the portal session is already established.
  headless: false

  # Browser window size as width,height
  window_size: "1440,900"

# Output configuration
output:
  # Base directory for organized files
  base_directory: "./comprobantes"

  # Category subdirectories
  pdf_subdir: "pdf"
  xml_subdir: "xml"

# Timing configuration (Go duration strings)
timing:
  # How often the download directory is checked for unfinished files
  download_poll_interval: "250ms"

  # How long to wait for one download to finish
  download_timeout: "15s"

  # Files older than this are not touched when organizing
  recent_window: "20s"

  # Pause between the XML and PDF clicks of one row
  trigger_pause: "500ms"

  # Pause between rows
  row_pause: "200ms"

  # Wait after clicking to the next page
  page_settle: "2s"

  # Page navigation timeout
  nav_timeout: "60s"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (empty = stderr only)
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to write configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Created configuration file: " + configPath)
	fmt.Println("\nEdit the file to match your setup, then run:")
	fmt.Printf("  sriscraper download --config %s\n", configPath)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to render configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current configuration:")
	fmt.Println(string(data))
	ui.PrintInfo("PDF directory", cfg.PDFDir())
	ui.PrintInfo("XML directory", cfg.XMLDir())
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		ui.PrintError("No configuration file specified", "use --config <path>")
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		ui.PrintError("Configuration file is invalid", err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file is valid: " + path)
}
