package sqlite

import "database/sql"

const adminPasswordKey = "admin_password_hash"

// GetAdminPasswordHash returns the stored admin password hash.
func (s *Storage) GetAdminPasswordHash() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStorageClosed
	}

	var hash string
	err := s.db.QueryRow(`SELECT value FROM admin_settings WHERE key = ?`, adminPasswordKey).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return hash, err
}

// SetAdminPasswordHash stores or replaces the admin password hash.
func (s *Storage) SetAdminPasswordHash(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO admin_settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, adminPasswordKey, hash)
	return err
}

// HasAdminPassword reports whether an admin password is configured.
func (s *Storage) HasAdminPassword() (bool, error) {
	_, err := s.GetAdminPasswordHash()
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
