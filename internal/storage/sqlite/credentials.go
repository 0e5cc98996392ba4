package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gemrelay/gemrelay/internal/storage/models"
)

// CreateCredential stores a new credential with the API key encrypted.
func (s *Storage) CreateCredential(cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}
	if cred.Name == "" || cred.APIKey == "" {
		return fmt.Errorf("%w: name and api_key are required", ErrInvalidInput)
	}

	if cred.ID == "" {
		cred.ID = generateID("cred")
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now()
	}

	encrypted, err := s.encryptor.Encrypt(cred.APIKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryptionError, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO credentials (id, name, priority, data, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, cred.ID, cred.Name, cred.Priority, encrypted, cred.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: credential name %q", ErrDuplicateKey, cred.Name)
		}
		return err
	}
	return nil
}

// ListCredentials returns all credentials ordered by priority, keys decrypted.
func (s *Storage) ListCredentials() ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.Query(`
		SELECT id, name, priority, data, created_at
		FROM credentials ORDER BY priority ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		var cred models.Credential
		var encrypted string
		if err := rows.Scan(&cred.ID, &cred.Name, &cred.Priority, &encrypted, &cred.CreatedAt); err != nil {
			return nil, err
		}

		decrypted, err := s.encryptor.Decrypt(encrypted)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncryptionError, err)
		}
		cred.APIKey = decrypted
		creds = append(creds, &cred)
	}
	return creds, rows.Err()
}

// CountCredentials returns the number of stored credentials.
func (s *Storage) CountCredentials() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStorageClosed
	}

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM credentials`).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}
