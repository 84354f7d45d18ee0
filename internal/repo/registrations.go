package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cafeDesk/internal/model"
)

const registrationColumns = `id, name, email, phone, experience, payment_screenshot_url, created_at, updated_at`

func (r *repository) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	query := `
		INSERT INTO coffee_tasting_registrations (name, email, phone, experience, payment_screenshot_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, query,
		reg.Name, reg.Email, reg.Phone, reg.Experience, reg.PaymentScreenshotURL,
	)
	if err := row.Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	return nil
}

func (r *repository) GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRegistrationNotFound
	}
	query := `SELECT ` + registrationColumns + ` FROM coffee_tasting_registrations WHERE id = $1`

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

func (r *repository) ListRegistrations(ctx context.Context) ([]model.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM coffee_tasting_registrations ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}
	defer rows.Close()

	regs := make([]model.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}
	return regs, nil
}

// DeleteRegistration reports how many rows the delete removed. Zero means
// the row was already gone or the database refused to remove it.
func (r *repository) DeleteRegistration(ctx context.Context, id string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM coffee_tasting_registrations WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

func (r *repository) CountRegistrations(ctx context.Context) (int, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM coffee_tasting_registrations`)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRegistration(s scanner) (*model.Registration, error) {
	var (
		reg        model.Registration
		screenshot sql.NullString
	)
	if err := s.Scan(
		&reg.ID,
		&reg.Name,
		&reg.Email,
		&reg.Phone,
		&reg.Experience,
		&screenshot,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	reg.PaymentScreenshotURL = nullString(screenshot)
	return &reg, nil
}
