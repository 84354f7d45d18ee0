package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cafeDesk/internal/model"
)

const eventConfigColumns = `id, title, description, event_date, start_time, end_time,
	min_participants, max_participants, price_per_person, down_payment_percentage,
	featured_coffees, additional_info, is_active, updated_at`

// GetActiveEventConfig returns the row flagged active.
func (r *repository) GetActiveEventConfig(ctx context.Context) (*model.EventConfig, error) {
	query := `SELECT ` + eventConfigColumns + `
		FROM coffee_tasting_config
		WHERE is_active
		ORDER BY updated_at DESC
		LIMIT 1`
	return r.getEventConfig(ctx, query)
}

// GetCurrentEventConfig returns the active row, or the most recently updated
// one when none is active.
func (r *repository) GetCurrentEventConfig(ctx context.Context) (*model.EventConfig, error) {
	query := `SELECT ` + eventConfigColumns + `
		FROM coffee_tasting_config
		ORDER BY is_active DESC, updated_at DESC
		LIMIT 1`
	return r.getEventConfig(ctx, query)
}

func (r *repository) getEventConfig(ctx context.Context, query string) (*model.EventConfig, error) {
	var (
		c        model.EventConfig
		featured sql.NullString
		info     sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query).Scan(
		&c.ID, &c.Title, &c.Description, &c.EventDate, &c.StartTime, &c.EndTime,
		&c.MinParticipants, &c.MaxParticipants, &c.PricePerPerson, &c.DownPaymentPercentage,
		&featured, &info, &c.IsActive, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventConfigNotFound
		}
		return nil, fmt.Errorf("failed to get event config: %w", err)
	}
	c.FeaturedCoffees = nullString(featured)
	c.AdditionalInfo = nullString(info)
	return &c, nil
}

// SaveEventConfig deactivates every row and then re-activates cfg.ID with the
// new values, inserting a fresh row when cfg.ID is unknown. Both steps run
// in one transaction so readers never observe zero or two active rows.
func (r *repository) SaveEventConfig(ctx context.Context, cfg *model.EventConfig) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE coffee_tasting_config SET is_active = false WHERE is_active`,
		); err != nil {
			return fmt.Errorf("failed to deactivate event configs: %w", err)
		}

		if _, err := uuid.Parse(cfg.ID); err == nil {
			err := tx.QueryRowContext(ctx, `
				UPDATE coffee_tasting_config
				SET title = $1, description = $2, event_date = $3, start_time = $4, end_time = $5,
				    min_participants = $6, max_participants = $7, price_per_person = $8,
				    down_payment_percentage = $9, featured_coffees = $10, additional_info = $11,
				    is_active = true, updated_at = NOW()
				WHERE id = $12
				RETURNING updated_at
			`, eventConfigArgs(cfg, cfg.ID)...).Scan(&cfg.UpdatedAt)
			if err == nil {
				cfg.IsActive = true
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to update event config: %w", err)
			}
			r.log.Warn().Str("config_id", cfg.ID).Msg("event config to update no longer exists, inserting a new one")
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO coffee_tasting_config (title, description, event_date, start_time, end_time,
				min_participants, max_participants, price_per_person, down_payment_percentage,
				featured_coffees, additional_info, is_active, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, NOW())
			RETURNING id, updated_at
		`, eventConfigArgs(cfg)...).Scan(&cfg.ID, &cfg.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert event config: %w", err)
		}
		cfg.IsActive = true
		return nil
	})
}

func eventConfigArgs(cfg *model.EventConfig, extra ...interface{}) []interface{} {
	args := []interface{}{
		cfg.Title, cfg.Description, cfg.EventDate, cfg.StartTime, cfg.EndTime,
		cfg.MinParticipants, cfg.MaxParticipants, cfg.PricePerPerson, cfg.DownPaymentPercentage,
		cfg.FeaturedCoffees, cfg.AdditionalInfo,
	}
	return append(args, extra...)
}
