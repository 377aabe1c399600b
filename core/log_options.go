// Package core provides small building blocks shared by divreminder packages.
// This file contains option functions for customizing activity log entries.
package core

import (
	"fmt"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/google/uuid"
)

// LogOption customizes a log entry before it is stored.
type LogOption func(log *domain.Log) error

// LogWithContext is an option to add a context map to a log entry.
func LogWithContext(context map[string]any) LogOption {
	return func(log *domain.Log) error {
		log.Context = context
		return nil
	}
}

// LogWithSyncRunID is an option to associate a log entry with an import run.
func LogWithSyncRunID(id uuid.UUID) LogOption {
	return func(log *domain.Log) error {
		log.SyncRunID = &id
		return nil
	}
}

// LogWithProductID is an option to associate a log entry with a product.
func LogWithProductID(id int64) LogOption {
	return func(log *domain.Log) error {
		log.ProductID = &id
		return nil
	}
}

// NewLog builds a timestamped log entry with a fresh v7 ID and applies opts in order.
func NewLog(level, message string, opts ...LogOption) (*domain.Log, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating log id: %w", err)
	}

	log := &domain.Log{
		ID:        id,
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	}
	for _, opt := range opts {
		if err := opt(log); err != nil {
			return nil, fmt.Errorf("applying log option: %w", err)
		}
	}
	return log, nil
}
