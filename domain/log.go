package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogRepository defines the interface for the persisted activity log.
type LogRepository interface {
	// InsertLog saves a new log entry to the repository.
	InsertLog(log *Log) error
	// GetLogs retrieves all log entries ordered by timestamp.
	GetLogs() ([]*Log, error)
}

// Log is an entry of the activity log, such as an import summary or a sent reminder.
type Log struct {
	ID        uuid.UUID      // Unique identifier for the log entry.
	Timestamp time.Time      // The time at which the log entry was created.
	Level     string         // The severity level of the log (e.g., INFO, WARN, ERROR).
	Message   string         // The main content of the log message.
	Context   map[string]any // A map of additional key-value data.
	SyncRunID *uuid.UUID     // An optional ID of the import the entry belongs to.
	ProductID *int64         // An optional ID of the product the entry refers to.
}
