package sqlite

import (
	"strings"
	"time"

	"github.com/gemrelay/gemrelay/internal/storage/models"
)

// LogRequest stores a request log entry.
func (s *Storage) LogRequest(log *models.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if log.ID == "" {
		log.ID = generateID("log")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	var credID any
	if log.CredentialID != "" {
		credID = log.CredentialID
	}

	_, err := s.db.Exec(`
		INSERT INTO request_logs
			(id, request_id, credential_id, model, prompt_tokens, completion_tokens,
			 total_tokens, status_code, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.ID, log.RequestID, credID, log.Model, log.PromptTokens, log.CompletionTokens,
		log.TotalTokens, log.StatusCode, log.ErrorMessage, log.DurationMs, log.CreatedAt)
	return err
}

// GetRequestLogs returns request logs matching the filter, newest first.
func (s *Storage) GetRequestLogs(filter models.LogFilter) ([]*models.RequestLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	var conds []string
	var args []any

	if filter.CredentialID != "" {
		conds = append(conds, "credential_id = ?")
		args = append(args, filter.CredentialID)
	}
	if filter.Model != "" {
		conds = append(conds, "model = ?")
		args = append(args, filter.Model)
	}
	if filter.StatusCode != nil {
		conds = append(conds, "status_code = ?")
		args = append(args, *filter.StatusCode)
	}
	if filter.StartDate != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, *filter.EndDate)
	}

	query := `
		SELECT id, request_id, COALESCE(credential_id, ''), model, prompt_tokens,
		       completion_tokens, total_tokens, status_code, COALESCE(error_message, ''),
		       duration_ms, created_at
		FROM request_logs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.RequestLog
	for rows.Next() {
		var l models.RequestLog
		if err := rows.Scan(&l.ID, &l.RequestID, &l.CredentialID, &l.Model, &l.PromptTokens,
			&l.CompletionTokens, &l.TotalTokens, &l.StatusCode, &l.ErrorMessage,
			&l.DurationMs, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
