// Package storage provides the storage interface and implementations.
package storage

import (
	"github.com/gemrelay/gemrelay/internal/storage/models"
	"github.com/gemrelay/gemrelay/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	Credential        = models.Credential
	CredentialPreview = models.CredentialPreview
	RequestLog        = models.RequestLog
	LogFilter         = models.LogFilter
	DailyUsage        = models.DailyUsage
	ModelStats        = models.ModelStats
	UsageStats        = models.UsageStats
)

// Re-export functions from models package
var MaskAPIKey = models.MaskAPIKey

// Re-export errors from sqlite package
var (
	ErrNotFound        = sqlite.ErrNotFound
	ErrDuplicateKey    = sqlite.ErrDuplicateKey
	ErrInvalidInput    = sqlite.ErrInvalidInput
	ErrStorageClosed   = sqlite.ErrStorageClosed
	ErrEncryptionError = sqlite.ErrEncryptionError
)

// Storage defines the interface for persistent data storage
type Storage interface {
	// Credential operations
	CreateCredential(cred *models.Credential) error
	ListCredentials() ([]*models.Credential, error)
	CountCredentials() (int, error)

	// Request logging operations
	LogRequest(log *models.RequestLog) error
	GetRequestLogs(filter models.LogFilter) ([]*models.RequestLog, error)

	// Usage statistics operations
	UpdateDailyUsage(usage *models.DailyUsage) error
	GetUsageStats() (*models.UsageStats, error)

	// Admin password operations
	GetAdminPasswordHash() (string, error)
	SetAdminPasswordHash(hash string) error
	HasAdminPassword() (bool, error)

	// Maintenance operations
	Close() error
}

// NewSQLiteStorage creates a new SQLite storage instance
// This is the main factory function for creating storage
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return sqlite.New(dbPath)
}
