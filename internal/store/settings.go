package store

import (
	"context"
	"fmt"

	"github.com/linkhoard/linkhoard/internal/domain"
)

// GetSettings reads all settings rows and applies defaults for keys never
// written.
func (s *Store) GetSettings(ctx context.Context) (domain.Settings, error) {
	out := domain.DefaultSettings()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return out, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return out, fmt.Errorf("scanning setting: %w", err)
		}
		switch key {
		case domain.SettingTagsAlphabetical:
			out.TagsAlphabetical = value == "1" || value == "true"
		case domain.SettingShowURL:
			out.ShowURL = value == "1" || value == "true"
		case domain.SettingShowDatetime:
			out.ShowDatetime = value == "1" || value == "true"
		case domain.SettingPaginationPerPage:
			out.PaginationPerPage = value
		case domain.SettingTagThreshold:
			out.TagThreshold = value
		}
	}
	return out, rows.Err()
}

// UpsertSettings writes the given key/value pairs. Values are expected to
// be already coerced into their stored string form (domain.CoerceSetting).
func (s *Store) UpsertSettings(ctx context.Context, values map[string]string) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		for key, value := range values {
			_, err := tx.q.ExecContext(ctx, `
				INSERT INTO settings (key, value, updated_at)
				VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET
					value = excluded.value,
					updated_at = excluded.updated_at`,
				key, value, tx.timestamp())
			if err != nil {
				return fmt.Errorf("writing setting %s: %w", key, err)
			}
		}
		return nil
	})
}
