package sqlite

import (
	"github.com/gemrelay/gemrelay/internal/storage/models"
)

// UpdateDailyUsage upserts the daily usage aggregate for one request.
func (s *Storage) UpdateDailyUsage(usage *models.DailyUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	// Unattributed requests keep an empty-string credential_id. A NULL
	// there would dodge the primary key and pile up one row per request.
	_, err := s.db.Exec(`
		INSERT INTO usage_daily
			(date, credential_id, model, request_count, prompt_tokens,
			 completion_tokens, total_tokens, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, credential_id, model) DO UPDATE SET
			request_count     = request_count + excluded.request_count,
			prompt_tokens     = prompt_tokens + excluded.prompt_tokens,
			completion_tokens = completion_tokens + excluded.completion_tokens,
			total_tokens      = total_tokens + excluded.total_tokens,
			error_count       = error_count + excluded.error_count
	`, usage.Date, usage.CredentialID, usage.Model, usage.RequestCount, usage.PromptTokens,
		usage.CompletionTokens, usage.TotalTokens, usage.ErrorCount)
	return err
}

// GetUsageStats aggregates usage across all days, with a per-model breakdown.
func (s *Storage) GetUsageStats() (*models.UsageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.Query(`
		SELECT model, SUM(request_count), SUM(prompt_tokens), SUM(completion_tokens),
		       SUM(total_tokens), SUM(error_count)
		FROM usage_daily GROUP BY model
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.UsageStats{
		ModelBreakdown: make(map[string]*models.ModelStats),
	}

	for rows.Next() {
		var m models.ModelStats
		if err := rows.Scan(&m.Model, &m.RequestCount, &m.PromptTokens,
			&m.CompletionTokens, &m.TotalTokens, &m.ErrorCount); err != nil {
			return nil, err
		}
		stats.ModelBreakdown[m.Model] = &m
		stats.TotalRequests += m.RequestCount
		stats.TotalPromptTokens += m.PromptTokens
		stats.TotalCompletionTokens += m.CompletionTokens
		stats.TotalTokens += m.TotalTokens
		stats.ErrorCount += m.ErrorCount
	}
	return stats, rows.Err()
}
