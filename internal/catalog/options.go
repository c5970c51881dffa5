package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/food_order/internal/domain"
)

func (r *Repository) ListSizes(ctx context.Context) ([]*domain.SizeOption, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, extra_price FROM sizes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sizes: %w", err)
	}
	defer rows.Close()

	var out []*domain.SizeOption
	for rows.Next() {
		s := &domain.SizeOption{}
		if err := rows.Scan(&s.ID, &s.Name, &s.ExtraPrice); err != nil {
			return nil, fmt.Errorf("failed to scan size: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func (r *Repository) GetSize(ctx context.Context, id int64) (*domain.SizeOption, error) {
	s := &domain.SizeOption{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, extra_price FROM sizes WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.ExtraPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSizeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query size: %w", err)
	}
	return s, nil
}

func (r *Repository) CreateSize(ctx context.Context, s *domain.SizeOption) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO sizes (name, extra_price) VALUES ($1, $2) RETURNING id`, s.Name, s.ExtraPrice,
	).Scan(&s.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to insert size: %w", err)
	}
	return nil
}

func (r *Repository) ListToppings(ctx context.Context) ([]*domain.ToppingOption, error) {
	return r.queryToppings(ctx, `SELECT id, name, extra_price FROM toppings ORDER BY id`)
}

// GetToppings returns the toppings among ids that exist; unknown ids are skipped.
func (r *Repository) GetToppings(ctx context.Context, ids []int64) ([]*domain.ToppingOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.queryToppings(ctx,
		`SELECT id, name, extra_price FROM toppings WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id`, args...)
}

func (r *Repository) CreateTopping(ctx context.Context, t *domain.ToppingOption) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO toppings (name, extra_price) VALUES ($1, $2) RETURNING id`, t.Name, t.ExtraPrice,
	).Scan(&t.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("failed to insert topping: %w", err)
	}
	return nil
}

func (r *Repository) queryToppings(ctx context.Context, query string, args ...any) ([]*domain.ToppingOption, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query toppings: %w", err)
	}
	defer rows.Close()

	var out []*domain.ToppingOption
	for rows.Next() {
		t := &domain.ToppingOption{}
		if err := rows.Scan(&t.ID, &t.Name, &t.ExtraPrice); err != nil {
			return nil, fmt.Errorf("failed to scan topping: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}
