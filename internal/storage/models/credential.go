// Package models contains data models for storage operations.
package models

import "time"

// Credential represents a stored Gemini API key. The key is encrypted at
// rest; this struct carries the decrypted value in memory only.
type Credential struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	APIKey    string    `json:"api_key"`
	Priority  int       `json:"priority"` // Rotation order, lower first
	CreatedAt time.Time `json:"created_at"`
}

// CredentialPreview is a safe representation of a credential (key masked)
type CredentialPreview struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	APIKeyPreview string    `json:"api_key_preview"`
	Priority      int       `json:"priority"`
	CreatedAt     time.Time `json:"created_at"`
}

// MaskAPIKey creates a masked preview of an API key
func MaskAPIKey(key string) string {
	if len(key) <= 10 {
		return "***"
	}
	return key[:6] + "..." + key[len(key)-4:]
}

// ToPreview converts a Credential to a safe CredentialPreview
func (c *Credential) ToPreview() *CredentialPreview {
	return &CredentialPreview{
		ID:            c.ID,
		Name:          c.Name,
		APIKeyPreview: MaskAPIKey(c.APIKey),
		Priority:      c.Priority,
		CreatedAt:     c.CreatedAt,
	}
}
