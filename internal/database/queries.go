package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"textsummarizer/internal/domain"
)

// GetUserSettingsWithDefault returns the stored settings of userID, or the
// defaults when nothing is stored. Stored values that are no longer valid are
// replaced by defaults.
func (d *Database) GetUserSettingsWithDefault(ctx context.Context, userID int64) (domain.Settings, error) {
	query := "select provider, model, summary_length from user_settings where user_id = ?"

	var (
		provider string
		model    string
		length   int
	)

	err := d.db.QueryRowContext(ctx, query, userID).Scan(&provider, &model, &length)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(userID), nil
	}
	if err != nil {
		return domain.DefaultSettings(userID), fmt.Errorf("scan row: %w", err)
	}

	settings := domain.Settings{
		UserID:        userID,
		Provider:      domain.Provider(provider),
		Model:         model,
		SummaryLength: length,
	}

	normalized := settings.Normalize()
	if normalized != settings {
		d.log.WarnContext(ctx, "Stored user settings are normalized",
			"userID", userID,
			"provider", provider,
			"model", model,
			"summaryLength", length)
	}

	return normalized, nil
}

func (d *Database) UpsertUserSettings(ctx context.Context, settings *domain.Settings) error {
	if settings == nil {
		return errors.New("settings are nil")
	}

	s := settings.Normalize()

	query := `insert into user_settings (user_id, provider, model, summary_length, updated_at)
values (?, ?, ?, ?, current_timestamp)
on conflict (user_id) do update set
    provider = excluded.provider,
    model = excluded.model,
    summary_length = excluded.summary_length,
    updated_at = excluded.updated_at`

	if _, err := d.db.ExecContext(ctx, query, s.UserID, string(s.Provider), s.Model, s.SummaryLength); err != nil {
		return fmt.Errorf("execute query: %w", err)
	}

	return nil
}
