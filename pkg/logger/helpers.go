package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogDocument logs the outcome of one download trigger for a document row
func LogDocument(invoice, fileType string, success bool, err error) {
	fields := map[string]interface{}{
		"invoice":   invoice,
		"file_type": fileType,
		"success":   success,
	}

	l := GetLogger().WithFields(fields)

	if err != nil {
		l.WithError(err).Warn("Document download failed")
	} else if success {
		l.Info("Document downloaded")
	} else {
		l.Warn("Document unavailable")
	}
}

// LogPageSummary logs the per-page outcome of the session loop
func LogPageSummary(page, successful, total int) {
	GetLogger().WithFields(map[string]interface{}{
		"page":       page,
		"successful": successful,
		"total":      total,
	}).Info("Page processed")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
