// Package logger provides a structured logging interface for the SRI scraper.
//
// It wraps the zerolog library to provide a clean API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "sriscraper/pkg/logger"
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	err := logger.Initialize(cfg)
//
//	logger.Info("Session started")
//	logger.WithField("invoice", "001-002-000123456").Info("Document downloaded")
//	logger.WithError(err).Error("Failed to organize files")
package logger
