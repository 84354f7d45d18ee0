package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cafeDesk/internal/model"
)

const termsColumns = `id, title, content, version, is_active, created_at, updated_at`

func (r *repository) GetActiveTerms(ctx context.Context) (*model.TermsAgreement, error) {
	query := `SELECT ` + termsColumns + ` FROM terms_agreements WHERE is_active ORDER BY updated_at DESC LIMIT 1`

	var t model.TermsAgreement
	err := r.db.QueryRowContext(ctx, query).Scan(
		&t.ID, &t.Title, &t.Content, &t.Version, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTermsNotFound
		}
		return nil, fmt.Errorf("failed to get active terms: %w", err)
	}
	return &t, nil
}

// ListTerms returns every stored version, newest first.
func (r *repository) ListTerms(ctx context.Context) ([]model.TermsAgreement, error) {
	query := `SELECT ` + termsColumns + ` FROM terms_agreements ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get terms: %w", err)
	}
	defer rows.Close()

	terms := make([]model.TermsAgreement, 0)
	for rows.Next() {
		var t model.TermsAgreement
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Content, &t.Version, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan terms: %w", err)
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate terms: %w", err)
	}
	return terms, nil
}

// SaveTerms retires the active version and inserts terms as the new active
// one. Older versions are kept.
func (r *repository) SaveTerms(ctx context.Context, terms *model.TermsAgreement) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE terms_agreements SET is_active = false, updated_at = NOW() WHERE is_active`,
		); err != nil {
			return fmt.Errorf("failed to deactivate terms: %w", err)
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO terms_agreements (title, content, version, is_active)
			VALUES ($1, $2, $3, true)
			RETURNING id, created_at, updated_at
		`, terms.Title, terms.Content, terms.Version).Scan(&terms.ID, &terms.CreatedAt, &terms.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert terms: %w", err)
		}
		terms.IsActive = true
		return nil
	})
}
